// Package kernel assembles the HTTP handler: global middleware, services,
// controllers and the route table.
package kernel

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/brewhouse/app/controllers"
	"github.com/shashiranjanraj/brewhouse/app/repositories"
	"github.com/shashiranjanraj/brewhouse/app/routes"
	"github.com/shashiranjanraj/brewhouse/app/schema"
	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/config"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/cache"
	"github.com/shashiranjanraj/brewhouse/pkg/ctx"
	"github.com/shashiranjanraj/brewhouse/pkg/database"
	"github.com/shashiranjanraj/brewhouse/pkg/graphql"
	"github.com/shashiranjanraj/brewhouse/pkg/mail"
	"github.com/shashiranjanraj/brewhouse/pkg/metrics"
	"github.com/shashiranjanraj/brewhouse/pkg/middleware"
	"github.com/shashiranjanraj/brewhouse/pkg/notification"
	"github.com/shashiranjanraj/brewhouse/pkg/reqid"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
	"github.com/shashiranjanraj/brewhouse/pkg/router"
	"github.com/shashiranjanraj/brewhouse/pkg/storage"
	"github.com/shashiranjanraj/brewhouse/pkg/workerpool"
)

// Deps are the long-lived resources the kernel is built on.
type Deps struct {
	Config config.Config
	DB     *gorm.DB
	Cache  *cache.Cache // nil disables the recipe cache
	Disk   storage.Disk
	Mailer *mail.Mailer // nil builds one from Config
	Hasher auth.Hasher  // nil uses bcrypt at the default cost

	// Notifier overrides OTP delivery; nil dispatches through Mailer on
	// the kernel's worker pool.
	Notifier services.Notifier
}

// HTTPKernel owns the router and the notification worker pool.
type HTTPKernel struct {
	router *router.Router
	pool   *workerpool.Pool
	tokens *auth.TokenIssuer
}

func NewHTTPKernel(d Deps) (*HTTPKernel, error) {
	cfg := d.Config
	if d.Mailer == nil {
		d.Mailer = mail.New(cfg)
	}
	if d.Hasher == nil {
		d.Hasher = auth.BcryptHasher{}
	}

	k := &HTTPKernel{
		router: router.New(),
		pool:   workerpool.New("notifications", cfg.NotifyWorkers),
		tokens: auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
	}

	if d.Notifier == nil {
		d.Notifier = notification.NewDispatcher(d.Mailer, k.pool)
	}

	users := repositories.NewUserRepository(d.DB)
	authSvc := services.NewAuthService(users, d.Hasher, k.tokens, d.Notifier, cfg.AllowAdminSignup)
	catalogSvc := services.NewCatalogService(repositories.NewCatalogRepository(d.DB), d.Cache, cfg.RecipesCacheTTL)
	orderSvc := services.NewOrderService(repositories.NewOrderRepository(d.DB), users,
		cfg.OrdersMaxLimit, cfg.OrderStrictTransitions)

	catalogSchema, err := schema.NewCatalog(catalogSvc)
	if err != nil {
		k.pool.Shutdown()
		return nil, err
	}

	r := k.router
	// Outermost first: metrics see total latency, recovery catches panics
	// before anything logs, the request id is set before the logger runs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(cfg.CORSAllowedOrigins)))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(chimw.StripSlashes)

	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", health(d.DB))
	r.Post("/graphql", "graphql", graphql.Handler(catalogSchema), middleware.Deadline(cfg.DBTimeout))

	routes.RegisterAPI(r, routes.Controllers{
		Auth:    controllers.NewAuthController(authSvc),
		Catalog: controllers.NewCatalogController(catalogSvc),
		Orders:  controllers.NewOrderController(orderSvc),
		Images:  controllers.NewImageController(services.NewImageService(d.Disk), cfg.UploadMaxBytes),
	}, middleware.Authenticate(k.tokens), middleware.Deadline(cfg.DBTimeout))

	return k, nil
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }

// Shutdown drains queued notifications.
func (k *HTTPKernel) Shutdown() { k.pool.Shutdown() }

func health(db *gorm.DB) http.HandlerFunc {
	return ctx.Wrap(func(c *ctx.Context) {
		pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(pingCtx, db); err != nil {
			c.Error(http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		c.OK("ok", response.Payload{"database": "up"})
	})
}
