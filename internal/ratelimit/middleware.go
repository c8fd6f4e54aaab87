package ratelimit

import "net/http"

type KeyFunc func(r *http.Request) string

// Middleware 超過限制時呼叫 onLimited，未提供則回 429 純文字
func Middleware(l Limiter, key KeyFunc, onLimited http.HandlerFunc) func(http.Handler) http.Handler {
	if onLimited == nil {
		onLimited = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), key(r)) {
				onLimited(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
