package http

import (
	"context"
	"net/http"
	"strings"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/observability/middleware"
	"accounts/internal/service"

	"github.com/google/uuid"
)

type subjectKey struct{}

// RequireBearer verifies the Authorization header with tokens and stores
// the token subject for the handler.
func RequireBearer(tokens service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := middleware.Logger(r.Context())
			raw := r.Header.Get("Authorization")
			if len(raw) < len("bearer ") || !strings.EqualFold(raw[:len("bearer ")], "bearer ") {
				log.Warn("auth missing bearer")
				writeResult(w, http.StatusUnauthorized, dto.Fail(domain.KindInvalidCredential, "missing bearer token"))
				return
			}
			userID, err := tokens.Verify(r.Context(), strings.TrimSpace(raw[len("bearer "):]))
			if err != nil {
				log.Warn("auth invalid token", "error", err)
				writeResult(w, http.StatusUnauthorized, dto.Fail(domain.KindInvalidCredential, "invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithSubject(r.Context(), userID)))
		})
	}
}

func contextWithSubject(ctx context.Context, id domain.UserID) context.Context {
	return context.WithValue(ctx, subjectKey{}, id)
}

func SubjectFrom(ctx context.Context) (domain.UserID, bool) {
	v, ok := ctx.Value(subjectKey{}).(uuid.UUID)
	return v, ok
}
