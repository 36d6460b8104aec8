package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	jwtpkg "github.com/stormhead-org/comments/internal/jwt"
	"github.com/stormhead-org/comments/internal/lib"
)

// NewAuthorizationMiddleware trusts the subject of a valid bearer token as the
// caller's user id. Whether that user still exists is checked by the handlers.
func NewAuthorizationMiddleware(logger *zap.Logger, jwt *jwtpkg.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				logger.Debug("missing authorization header")
				lib.WriteJSONError(w, status.Errorf(codes.Unauthenticated, "missing or invalid token"))
				return
			}
			if !strings.HasPrefix(header, "Bearer ") {
				logger.Debug("missing bearer")
				lib.WriteJSONError(w, status.Errorf(codes.Unauthenticated, "missing or invalid token"))
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")

			id, err := jwt.ParseAccessToken(token)
			if err != nil {
				logger.Debug("invalid access token", zap.Error(err))
				lib.WriteJSONError(w, status.Errorf(codes.Unauthenticated, "invalid token"))
				return
			}

			if _, err := uuid.Parse(id); err != nil {
				logger.Debug("access token subject is not a user id", zap.String("sub", id))
				lib.WriteJSONError(w, status.Errorf(codes.Unauthenticated, "invalid token"))
				return
			}

			ctx := SetUserID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
