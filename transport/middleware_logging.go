package transport

import (
	"net/http"
	"time"

	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// LoggingMiddleware logs requests to the status listener. Paths in quiet are
// polled by scrapers and log at debug; any 5xx logs at warn.
func LoggingMiddleware(quiet ...string) mux.MiddlewareFunc {
	polled := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		polled[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int("bytes", rec.written),
				zap.String("remote", r.RemoteAddr),
				zap.Duration("duration", time.Since(start)),
			}
			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.Warn("[status] request failed", fields...)
			case polled[r.URL.Path]:
				logger.Debug("[status] request", fields...)
			default:
				logger.Info("[status] request", fields...)
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}
