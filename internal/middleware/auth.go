package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/collegebuddy/backend/internal/model/user"
	authservice "github.com/collegebuddy/backend/internal/service/auth"
	"github.com/collegebuddy/backend/internal/store"
	"github.com/collegebuddy/backend/pkg/utils"
)

type contextKey string

const userContextKey contextKey = "authenticatedUser"

// RequireAuth verifies the bearer token and loads the account it names into
// the request context. Requests without a token get 401, requests with a bad
// token get 403.
func RequireAuth(authSvc *authservice.Service, st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "access token required")
				return
			}

			claims, err := authSvc.VerifyToken(token)
			if err != nil {
				utils.RespondError(w, http.StatusForbidden, "invalid token")
				return
			}

			u, err := st.GetUser(r.Context(), claims.UserID)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "user not found")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom extracts the account placed in the context by RequireAuth.
func UserFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userContextKey).(user.User)
	return u, ok
}
