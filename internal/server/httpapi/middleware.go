package httpapi

import (
	"context"
	"net/http"

	"github.com/frankly034/userdir/internal/server/models"
)

type ctxKey string

const actorKey ctxKey = "actor"

// withActor validates the bearer token and loads the account behind it into
// the request context. The row is loaded fresh on every request, so a token
// issued before deletion or a demotion does not keep working.
func (s *Server) withActor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.svc.ValidateToken(r.Header.Get("Authorization"))
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}

		actor, err := s.svc.ResolveActor(r.Context(), claims.UserID)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func actorFrom(ctx context.Context) *models.User {
	actor, _ := ctx.Value(actorKey).(*models.User)
	return actor
}
