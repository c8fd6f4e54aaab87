package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/rs/zerolog"
)

func RecoverMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error().
						Str("request_id", RequestIDFrom(r.Context())).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Str("error", fmt.Sprintf("%v", err)).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					response.ErrorJSON(w, http.StatusInternalServerError, "Internal Server Error", nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
