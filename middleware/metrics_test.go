package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCountsByRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/blogs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/blogs/:id", "200"))
	perform(r, httptest.NewRequest(http.MethodGet, "/blogs/1", nil))
	perform(r, httptest.NewRequest(http.MethodGet, "/blogs/2", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/blogs/:id", "200"))
	assert.Equal(t, before+2, after)

	w := perform(MetricsHandler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lifedrop_http_requests_total")
}
