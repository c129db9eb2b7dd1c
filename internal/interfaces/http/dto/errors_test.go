package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{"MALFORMED_SERVICE", http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{"ACCOUNT_DEACTIVATED", http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{"SERVICE_NOT_FOUND", http.StatusNotFound},
		{"EMAIL_EXISTS", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"ALREADY_CONFIRMED", http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		// prefix and suffix fallbacks
		{"INVALID_CURRENCY_CODE", http.StatusBadRequest},
		{"INVALID_DUE_DATE", http.StatusBadRequest},
		{"PACKAGE_EXISTS", http.StatusConflict},
		{"USER_NOT_FOUND", http.StatusNotFound},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError("INVALID_AMOUNT"))
	assert.True(t, IsClientError(ErrCodeNotFound))
	assert.False(t, IsClientError(ErrCodeInternal))
	assert.False(t, IsClientError("UNMAPPED"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		pageSize   int
		totalPages int
	}{
		{"exact pages", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"empty", 0, 20, 0},
		{"zero page size", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.totalPages, resp.Meta.TotalPages)
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Invalid request", "req-1", []ValidationDetail{
		{Field: "email", Message: "email must be a valid email address"},
	})

	body, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, false, decoded["success"])
	errInfo := decoded["error"].(map[string]interface{})
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
	assert.NotContains(t, decoded, "data")
}

func TestNewErrorResponse_OmitsEmptyRequestID(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "Client not found"))
	require.NoError(t, err)
	assert.NotContains(t, string(body), "request_id")
	assert.Contains(t, string(body), `"code":"NOT_FOUND"`)
}
