package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
)

const adminTokenHeader = "X-Admin-Token"

const msgAdminUnauthorized = "missing or invalid admin token"

// AdminAuth ограничивает доступ к админским маршрутам статическим токеном.
// Пустой настроенный токен закрывает админские маршруты полностью.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(adminTokenHeader)
			if token == "" || provided == "" ||
				subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				handlers.RespondError(w, http.StatusUnauthorized, msgAdminUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
