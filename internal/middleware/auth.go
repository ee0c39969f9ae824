package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pledgeline/pledgeline/internal/ctxkeys"
	"github.com/pledgeline/pledgeline/internal/service"
)

// RequireAuth rejects requests without a valid bearer token and puts the
// token's user id in the context.
func RequireAuth(authService *service.AuthService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, err := service.BearerToken(r)
			if err != nil {
				unauthorized(w, err)
				return
			}

			userID, err := authService.VerifyJWT(token)
			if err != nil {
				slog.Debug("rejected token", "error", err, "path", r.URL.Path)
				unauthorized(w, service.ErrInvalidToken)
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)
			next(w, r.WithContext(ctx))
		}
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="pledgeline"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
