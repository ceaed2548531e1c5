package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/careerbridge-backend/internal/observability"
)

// Operations left out of request metrics. SSE streams stay open for the
// whole session and health probes are scraped every few seconds.
var unmeteredOperations = map[string]bool{
	"health":          true,
	"realtime.stream": true,
}

// Metrics records request counts and latency per API operation, labelled
// with the names from OperationFor.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		op := Operation(c)
		if unmeteredOperations[op] {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, op, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
