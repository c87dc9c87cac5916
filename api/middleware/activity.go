package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/internal/admins"
	"github.com/vora-labs/gogo-admin/pkg/logger"
)

// ActivityRecorder appends admin actions to the activity log.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, input admins.ActivityInput) error
}

// Activity records every successful mutating request made by an
// authenticated admin. It must run after Auth. A failed write is logged and
// never changes the response.
func Activity(recorder ActivityRecorder, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if recorder == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status >= http.StatusBadRequest {
				return
			}

			adminID, err := uuid.Parse(AdminIDFromContext(r.Context()))
			if err != nil {
				return
			}
			input := admins.ActivityInput{
				AdminID:   adminID,
				Action:    r.Method + " " + routePattern(r),
				Target:    r.URL.Path,
				IPAddress: clientIP(r),
			}
			ctx := context.WithoutCancel(r.Context())
			if err := recorder.RecordActivity(ctx, input); err != nil && logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "admin activity not recorded")
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
