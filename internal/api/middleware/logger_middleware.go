package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type StatusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *StatusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// 記錄 request 請求
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &StatusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			var evt *zerolog.Event
			switch status := recorder.Status(); {
			case status >= http.StatusInternalServerError:
				evt = logger.Error()
			case status >= http.StatusBadRequest:
				evt = logger.Warn()
			default:
				evt = logger.Info()
			}
			evt.Str("request_id", RequestIDFrom(r.Context())).
				Str("session_id", SessionIDFrom(r.Context())).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recorder.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request completed")
		})
	}
}
