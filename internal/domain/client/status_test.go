package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func services(statuses ...ServiceStatus) []Service {
	out := make([]Service, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Service{Status: s})
	}
	return out
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name     string
		stored   Status
		services []Service
		want     Status
	}{
		{"archived dominates completed services", StatusArchived, services(ServiceCompleted, ServiceCompleted), StatusArchived},
		{"archived with no services", StatusArchived, nil, StatusArchived},
		{"all completed promotes active", StatusActive, services(ServiceCompleted, ServiceCompleted), StatusFinished},
		{"all completed promotes paused", StatusPaused, services(ServiceCompleted), StatusFinished},
		{"zero services never promote", StatusActive, nil, StatusActive},
		{"empty slice never promotes", StatusActive, []Service{}, StatusActive},
		{"one open service passes through", StatusActive, services(ServiceCompleted, ServiceInProgress), StatusActive},
		{"delayed service passes through", StatusPaused, services(ServiceDelayed), StatusPaused},
		{"finished passes through with open services", StatusFinished, services(ServiceInProgress), StatusFinished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.stored, tt.services))
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(now, time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, DaysUntil(now, time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)))
	assert.Equal(t, 21, DaysUntil(now, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -3, DaysUntil(now, time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)))
}
