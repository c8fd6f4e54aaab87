package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionMiddleware 購物 session 由 X-Session-ID 識別，沒有時產生新的並回傳給前端
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.Header.Get(SessionIDHeader))
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		w.Header().Set(SessionIDHeader, sessionID)
		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
	})
}

// ClientIPKey 限流以來源 IP 為單位，session id 由前端控制不能當作限流的 key
// 需放在 middleware.RealIP 之後
func ClientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
