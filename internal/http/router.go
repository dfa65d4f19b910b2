package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/munmentor/munmentor/internal/collab"
	"github.com/munmentor/munmentor/internal/config"
	"github.com/munmentor/munmentor/internal/http/handlers"
	"github.com/munmentor/munmentor/internal/http/middlewares"
	"github.com/munmentor/munmentor/internal/observability"
	"github.com/munmentor/munmentor/internal/redisclient"
	"github.com/munmentor/munmentor/internal/repo/postgres"
	"github.com/munmentor/munmentor/internal/session"
)

// voice uploads carry base64 audio, so the cap is generous
const maxBodyBytes = 4 << 20

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redisclient.Client, prom *observability.Prom, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware("munmentor"))
	}

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health + metrics

	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	pingRedis := func() error {
		if rdb == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return rdb.Ping(ctx)
	}

	health := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up the store, sessions and collaborators

	usersRepo := postgres.NewUsersRepo(pool)
	sessions := session.NewStore(rdb.Raw(), cfg.SessionSecret, cfg.SessionTTL)

	gemini := collab.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, "", prom)
	speech := collab.NewSpeech(cfg.SpeechAPIKey, "", prom)
	sheets := collab.NewSheets(cfg.SheetsWebhookURL, prom)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, sessions, prom, cfg)
	chatHandler := handlers.NewChatHandler(gemini, speech)
	registerHandler := handlers.NewRegisterHandler(sheets, usersRepo)
	munHandler := handlers.NewMunHandler()

	// open routes

	r.GET("/", handlers.Home)
	r.GET("/unauthorized", handlers.Unauthorized)
	r.GET("/resources", munHandler.Resources)
	r.GET("/procedures", munHandler.Procedures)
	r.GET("/check_auth", authHandler.CheckAuth)

	requireJSON := middlewares.RequireJSON()
	r.POST("/signup", requireJSON, authHandler.SignUp)
	r.POST("/login", requireJSON, authHandler.Login)

	// session-gated routes

	authed := middlewares.RequireSession(sessions)
	r.GET("/logout", authed, authHandler.Logout)
	r.POST("/chat", authed, requireJSON, chatHandler.Chat)
	r.POST("/voice", authed, chatHandler.Voice)
	r.POST("/register", authed, requireJSON, registerHandler.Register)

	return r
}
