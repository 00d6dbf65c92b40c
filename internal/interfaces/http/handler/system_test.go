package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("lookupdesk")
	r := gin.New()
	r.GET("/api/v1/system/info", h.GetSystemInfo)
	r.GET("/api/v1/system/ping", h.Ping)

	t.Run("info reports name and runtime", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data SystemInfoResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "lookupdesk", resp.Data.Name)
		assert.NotEmpty(t, resp.Data.GoVersion)
	})

	t.Run("ping answers pong", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "pong")
	})
}
