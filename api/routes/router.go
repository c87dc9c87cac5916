package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vora-labs/gogo-admin/api/controllers"
	"github.com/vora-labs/gogo-admin/api/middleware"
	"github.com/vora-labs/gogo-admin/internal/admins"
	"github.com/vora-labs/gogo-admin/internal/auth"
	"github.com/vora-labs/gogo-admin/internal/members"
	product "github.com/vora-labs/gogo-admin/internal/products"
	tool "github.com/vora-labs/gogo-admin/internal/tools"
	"github.com/vora-labs/gogo-admin/pkg/auth/session"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	pkgredis "github.com/vora-labs/gogo-admin/pkg/redis"
)

// CacheStore is the redis surface the HTTP layer needs.
type CacheStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// RouterParams names everything the admin API router is built from.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              controllers.Pinger
	Cache           CacheStore
	Sessions        session.AccessSessionChecker
	AuthService     auth.Service
	RegisterService auth.RegisterService
	ProductService  product.Service
	ToolService     tool.Service
	AdminService    admins.Service
	MemberService   members.Service
	SyncFailures    controllers.SyncFailureLister
	Metrics         http.Handler
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if cfg.App.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.App.RequestTimeout))
	}

	loginLimits := middleware.LoginLimitsFromConfig(cfg.AuthLimit)

	deps := map[string]controllers.Pinger{}
	if p.DB != nil {
		deps["db"] = p.DB
	}
	if p.Cache != nil {
		deps["redis"] = p.Cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics)
	}

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.ThrottleLogin(loginLimits, p.Cache, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AuthRegister(p.RegisterService, cfg, logg))
		}
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireWrite(logg))
		r.Use(middleware.Idempotency(p.Cache, logg))
		if p.AdminService != nil {
			r.Use(middleware.Activity(p.AdminService, logg))
		}

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(p.ProductService, logg))
			r.Post("/", controllers.CreateProduct(p.ProductService, logg))
			r.Get("/bundlable-tools", controllers.SearchBundlableTools(p.ProductService, logg))
			r.Get("/{productId}", controllers.GetProduct(p.ProductService, logg))
			r.Put("/{productId}", controllers.UpdateProduct(p.ProductService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(p.ProductService, logg))
			r.Post("/{productId}/sync", controllers.SyncProduct(p.ProductService, logg))
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", controllers.ListTools(p.ToolService, logg))
			r.Post("/", controllers.CreateTool(p.ToolService, logg))
			r.Get("/{toolId}", controllers.GetTool(p.ToolService, logg))
			r.Put("/{toolId}", controllers.UpdateTool(p.ToolService, logg))
			r.Delete("/{toolId}", controllers.DeleteTool(p.ToolService, logg))
			r.Patch("/{toolId}/status", controllers.ToggleToolStatus(p.ToolService, logg))
		})

		r.Route("/admins", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.AdminRoleSuperAdmin, enums.AdminRoleAdmin))
			r.Get("/", controllers.ListAdmins(p.AdminService, logg))
			r.Get("/activity", controllers.ListAdminActivity(p.AdminService, logg))
			r.Get("/{adminId}", controllers.GetAdmin(p.AdminService, logg))
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", controllers.ListMembers(p.MemberService, logg))
			r.Get("/{memberId}", controllers.GetMember(p.MemberService, logg))
		})

		r.Get("/billing/sync-failures", controllers.ListSyncFailures(p.SyncFailures, logg))
	})

	return r
}
