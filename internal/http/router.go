package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/okoro-dev/realtyhub/internal/auth"
	"github.com/okoro-dev/realtyhub/internal/cache"
	"github.com/okoro-dev/realtyhub/internal/config"
	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"github.com/okoro-dev/realtyhub/internal/http/handlers"
	"github.com/okoro-dev/realtyhub/internal/http/middlewares"
	"github.com/okoro-dev/realtyhub/internal/observability"
	"github.com/okoro-dev/realtyhub/internal/repo/postgres"
	"github.com/okoro-dev/realtyhub/internal/service"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, listings *cache.ListingCache, prom *observability.Prom, reg *prometheus.Registry, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(otelgin.Middleware("realtyhub"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// wire up repositories
	accountsRepo := postgres.NewAccountsRepo(pool, prom)
	homesRepo := postgres.NewHomesRepo(pool, prom)
	messagesRepo := postgres.NewMessagesRepo(pool, prom)

	// auth core
	codec := auth.NewManager(cfg.JWTSecret, cfg.CredentialTTL)
	invites := auth.NewInviteSigner(cfg.InviteSecret)
	resolver := middlewares.NewIdentityResolver(codec, accountsRepo)

	// the role requirement table is assembled here, alongside the
	// routes it describes, and is immutable once serving starts
	gate := middlewares.NewGate(resolver)
	gate.Require(http.MethodPost, "/auth/key", account.RoleAdmin)
	gate.Require(http.MethodGet, "/auth/me", account.RoleBuyer, account.RoleRealtor, account.RoleAdmin)
	gate.Require(http.MethodPost, "/home", account.RoleRealtor, account.RoleAdmin)
	gate.Require(http.MethodPut, "/home/:id", account.RoleRealtor, account.RoleAdmin)
	gate.Require(http.MethodDelete, "/home/:id", account.RoleRealtor, account.RoleAdmin)
	gate.Require(http.MethodPost, "/home/inquire/:id", account.RoleBuyer)
	gate.Require(http.MethodGet, "/home/:id/messages", account.RoleRealtor)

	r.Use(gate.Middleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	authSvc := service.NewAuth(accountsRepo, codec, invites)
	authHandler := handlers.NewAuthHandler(authSvc, prom)

	owners := cache.New(30 * time.Second)
	homesHandler := handlers.NewHomesHandler(homesRepo, messagesRepo, listings, owners)

	// credential endpoints take the brunt of abuse; keep them behind a
	// per-IP fixed window
	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	authGroup := r.Group("/auth", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/signup/:userType", authHandler.SignUp)
	authGroup.POST("/signin", authHandler.SignIn)
	authGroup.POST("/key", authHandler.GenerateKey)
	authGroup.GET("/me", authHandler.Me)

	// inquiries are a spam magnet; budget them per buyer account
	inquireLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	r.GET("/home", homesHandler.ListHomes)
	r.GET("/home/:id", homesHandler.GetHome)
	r.POST("/home", homesHandler.CreateHome)
	r.PUT("/home/:id", homesHandler.UpdateHome)
	r.DELETE("/home/:id", homesHandler.DeleteHome)
	r.POST("/home/inquire/:id", inquireLimiter.RateLimiterMiddleware(middlewares.KeyByAccountOrIP), homesHandler.Inquire)
	r.GET("/home/:id/messages", homesHandler.GetHomeMessages)

	return r
}
