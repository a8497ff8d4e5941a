package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinPrometheusMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-test"))
	router.GET("/products/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	counter := HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/products/:id", "200")
	assert.Equal(t, float64(3), testutil.ToFloat64(counter))
}

func TestGinPrometheusMiddleware_SkipsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-health-test"))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	counter := HttpRequestsTotal.WithLabelValues("metrics-health-test", http.MethodGet, "/health", "200")
	assert.Equal(t, float64(0), testutil.ToFloat64(counter))
}

func TestStoreTimer_CountsErrors(t *testing.T) {
	var err error
	NewStoreTimer("timer-test", StoreOpFind, "products").Observe(&err)
	assert.Equal(t, float64(0), testutil.ToFloat64(StoreErrors.WithLabelValues("timer-test", "find", "products")))

	err = errors.New("boom")
	NewStoreTimer("timer-test", StoreOpFind, "products").Observe(&err)
	assert.Equal(t, float64(1), testutil.ToFloat64(StoreErrors.WithLabelValues("timer-test", "find", "products")))
}
