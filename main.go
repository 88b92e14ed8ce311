package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/datalume/partners-portal/internal/accesslog"
	"github.com/datalume/partners-portal/internal/attempts"
	"github.com/datalume/partners-portal/internal/audit"
	"github.com/datalume/partners-portal/internal/auth"
	"github.com/datalume/partners-portal/internal/clients"
	"github.com/datalume/partners-portal/internal/config"
	"github.com/datalume/partners-portal/internal/handlers/api"
	"github.com/datalume/partners-portal/internal/metrics"
	"github.com/datalume/partners-portal/internal/middlewares"
	"github.com/datalume/partners-portal/model"
	"github.com/datalume/partners-portal/params"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "partners-portal - client report delivery portal backend"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

func mustInitRedisStorage(redisCfg config.RedisConfig) *redis.Storage {
	return redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
}

func setupRoutes(
	router fiber.Router,
	loginLimiter fiber.Handler,
	sessionService *auth.SessionService,
	authHandler *api.AuthHandler,
	adminHandler *api.AdminHandler) {

	authGroup := router.Group("/api/auth")
	authGroup.Post("/login", loginLimiter, authHandler.PostLogin)
	authGroup.Post("/logout", authHandler.PostLogout)
	authGroup.Post("/session", authHandler.PostSession)
	authGroup.Post("/password", authHandler.PostChangePassword)
	router.Post("/api/log-access", authHandler.PostLogAccess)

	adminGroup := router.Group("/api/admin", middlewares.RequireAdmin(sessionService))
	adminGroup.Get("/clients", adminHandler.GetClients)
	adminGroup.Post("/clients", adminHandler.PostClient)
	adminGroup.Put("/clients", adminHandler.PutClient)
	adminGroup.Delete("/clients", adminHandler.DeleteClient)
	adminGroup.Get("/stats", adminHandler.GetStats)
	adminGroup.Get("/attempts", adminHandler.GetAttempts)
	adminGroup.Get("/sessions", adminHandler.GetSessions)
	adminGroup.Delete("/sessions", adminHandler.DeleteSessions)
	adminGroup.Get("/audit", adminHandler.GetAudit)
}

func startSessionSweeper(ctx context.Context, sessionService *auth.SessionService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessionService.CleanupExpired(ctx)
		}
	}
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.MySQL)
	redisStorage := mustInitRedisStorage(cfg.Redis)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// repositories
	var (
		clientRepo    = clients.NewClientRepository(db)
		sessionRepo   = auth.NewSessionRepository(db)
		attemptRepo   = attempts.NewAttemptRepository(db)
		accessLogRepo = accesslog.NewAccessLogRepository(db)
		auditRepo     = audit.NewAuditRepository(db)
	)

	// services
	var (
		sessionService   = auth.NewSessionService(sessionRepo, cfg.Session.Duration, collector)
		attemptService   = attempts.NewAttemptService(attemptRepo)
		accessLogService = accesslog.NewAccessLogService(accessLogRepo, collector)
		auditService     = audit.NewAuditService(auditRepo, clientRepo)
		clientService    = clients.NewClientService(clientRepo, auditService)
		loginService     = auth.NewLoginService(clientRepo, sessionService, attemptService, accessLogService, collector)
	)

	// handlers
	var (
		authHandler  = api.NewAuthHandler(loginService, sessionService, accessLogService, clientService)
		adminHandler = api.NewAdminHandler(clientService, sessionService, accessLogService, attemptService, auditService)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	loginLimiter := limiter.New(limiter.Config{
		Max:        params.LoginRateLimitMax,
		Expiration: params.LoginRateLimitWindow,
		Storage:    redisStorage,
	})

	setupRoutes(router, loginLimiter, sessionService, authHandler, adminHandler)

	backgroundCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go startHealthCheckServer(backgroundCtx, done, redisStorage.Conn(), db, registry)
	go startSessionSweeper(backgroundCtx, sessionService)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(cfg.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
