package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDKey - ключ, под которым ID пользователя лежит в контексте запроса.
type UserIDKey string

const ContextUserIDKey UserIDKey = "userID"

// AuthMiddleware - "охранник" API: пускает дальше только запросы
// с валидным Bearer-токеном и кладет ID пользователя в контекст.
// Ключ подписи приходит из конфигурации, а не из глобальной переменной.
func (h *ApiHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			respondWithError(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		tokenString := headerParts[1]
		claims := &Claims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			// Принимаем только HMAC, чтобы нельзя было подсунуть alg=none
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return h.JWTSecret, nil
		})

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				respondWithError(w, http.StatusUnauthorized, "Token has expired")
			} else {
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		if !token.Valid {
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		// Токен валидный - "обогащаем" запрос ID пользователя
		ctx := context.WithValue(r.Context(), ContextUserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFrom достает ID пользователя, положенный middleware в контекст.
func userIDFrom(r *http.Request) (int, bool) {
	userID, ok := r.Context().Value(ContextUserIDKey).(int)
	return userID, ok
}
