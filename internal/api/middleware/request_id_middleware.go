package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//從header內檢查是否有request id
		requestId := r.Header.Get(RequestIDHeader)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestId)

		ctx := context.WithValue(r.Context(), requestIDKey, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
