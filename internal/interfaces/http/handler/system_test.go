package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler(t *testing.T) {
	ok := DependencyCheck{Name: "database", Check: func(context.Context) error { return nil }}
	down := DependencyCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	newRouter := func(checks ...DependencyCheck) *gin.Engine {
		h := NewSystemHandler("agency-dashboard", "1.2.3", checks...)
		r := gin.New()
		r.GET("/health", h.Health)
		r.GET("/ready", h.Ready)
		r.GET("/system/info", h.GetSystemInfo)
		return r
	}

	t.Run("liveness ignores dependencies", func(t *testing.T) {
		w := doRequest(newRouter(down), http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ready when every dependency answers", func(t *testing.T) {
		w := doRequest(newRouter(ok), http.MethodGet, "/ready", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Dependencies["database"])
	})

	t.Run("unavailable when one dependency fails", func(t *testing.T) {
		w := doRequest(newRouter(ok, down), http.MethodGet, "/ready", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "ok", resp.Dependencies["database"])
		assert.Equal(t, "error", resp.Dependencies["redis"])
	})

	t.Run("info", func(t *testing.T) {
		w := doRequest(newRouter(), http.MethodGet, "/system/info", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var info SystemInfoResponse
		decodeData(t, w, &info)
		assert.Equal(t, "agency-dashboard", info.Name)
		assert.Equal(t, "1.2.3", info.Version)
		assert.NotEmpty(t, info.GoVersion)
	})
}
