package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Request lifecycle states. RESPONDED is terminal.
const (
	StateReceived   = "RECEIVED"
	StateAuthorized = "AUTHORIZED"
	StateDenied     = "DENIED"
	StateDelegated  = "DELEGATED"
	StateResponded  = "RESPONDED"
)

// GetRequestIDFromContext returns the ID assigned by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// LogState emits a debug line for one lifecycle transition of r
func LogState(logger *zap.Logger, r *http.Request, state string, fields ...zap.Field) {
	if ce := logger.Check(zap.DebugLevel, "request state"); ce != nil {
		ce.Write(append([]zap.Field{
			zap.String("state", state),
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		}, fields...)...)
	}
}

// RequestLogger logs one line per request at info level
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
