package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_WritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("catalog-service", "debug", &buf)

	Info().Str("key", "value").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "catalog-service", entry["service"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "hello", entry["message"])
}

func TestInitWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("svc", "nonsense", &buf)

	Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestGinLoggerMiddleware_SetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("svc", "info", &buf)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinLoggerMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), "HTTP request")
}

func TestGinLoggerMiddleware_KeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("svc", "info", &buf)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinLoggerMiddleware())
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}
