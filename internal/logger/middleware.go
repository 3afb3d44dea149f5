package logger

import (
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

const traceparentHeader = "traceparent"

func RequestLogger(baseLogger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceparent := continueTraceparent(c.GetHeader(traceparentHeader))
		reqLogger := baseLogger.With("traceparent", traceparent)

		reqLogger.Info("request started", "method", c.Request.Method, "path", c.Request.URL.Path)
		start := time.Now()

		ctx := NewContext(c.Request.Context(), reqLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Header(traceparentHeader, traceparent)
		c.Next()

		reqLogger.Info("request completed", "status", c.Writer.Status(), "duration", time.Since(start))
	}
}

var requests = atomic.Int64{}

func generateTraceID() string {
	hi := rand.Uint64()
	lo := rand.Uint64()
	return fmt.Sprintf("%016x%016x", hi, lo)
}
func generateSpanID() string {
	randomNum := rand.Uint64()
	return fmt.Sprintf("%016x", randomNum)
}

func generateTraceFlags() string {
	defer func() {
		requests.Add(1)
	}()

	if requests.Load()%100 == 0 {
		return "01"
	}

	return "00"
}

func generateTraceparent() string {
	version := "00"
	traceID := generateTraceID()
	spanID := generateSpanID()
	traceFlags := generateTraceFlags()

	return fmt.Sprintf("%s-%s-%s-%s", version, traceID, spanID, traceFlags)
}

// continueTraceparent keeps the trace id and flags of a well-formed incoming
// header and gives this hop a fresh span id.
func continueTraceparent(incoming string) string {
	parts := strings.Split(incoming, "-")
	if len(parts) != 4 || parts[0] != "00" || !isHex(parts[1], 32) || !isHex(parts[2], 16) || !isHex(parts[3], 2) {
		return generateTraceparent()
	}
	if strings.Trim(parts[1], "0") == "" {
		return generateTraceparent()
	}
	return fmt.Sprintf("00-%s-%s-%s", parts[1], generateSpanID(), parts[3])
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}
