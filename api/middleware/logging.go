package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/vora-labs/gogo-admin/pkg/logger"
)

type actorKey struct{}

// requestActor is filled in by Auth so the outer logging middleware can
// report who made the request.
type requestActor struct {
	adminID string
	role    string
}

func recordActor(ctx context.Context, adminID, role string) {
	if actor, ok := ctx.Value(actorKey{}).(*requestActor); ok && actor != nil {
		actor.adminID = adminID
		actor.role = role
	}
}

func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := &requestActor{}
			ctx := context.WithValue(r.Context(), actorKey{}, actor)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				})
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			if logg != nil {
				logg.Info(ctx, "request.start")
			}

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			if logg != nil {
				fields := map[string]any{
					"status":      rec.status,
					"duration_ms": time.Since(start).Milliseconds(),
				}
				if actor.adminID != "" {
					fields["admin_id"] = actor.adminID
					fields["actor_role"] = actor.role
				}
				logg.Info(logg.WithFields(ctx, fields), "request.complete")
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
