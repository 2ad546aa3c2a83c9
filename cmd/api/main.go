package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gcommerce/groupcommerce-backend/api/controllers/splits"
	"github.com/gcommerce/groupcommerce-backend/api/middleware"
	"github.com/gcommerce/groupcommerce-backend/api/routes"
	accesspkg "github.com/gcommerce/groupcommerce-backend/internal/access"
	"github.com/gcommerce/groupcommerce-backend/internal/auth"
	"github.com/gcommerce/groupcommerce-backend/internal/groups"
	"github.com/gcommerce/groupcommerce-backend/internal/orders"
	"github.com/gcommerce/groupcommerce-backend/internal/shoppingcontext"
	splitsvc "github.com/gcommerce/groupcommerce-backend/internal/split"
	"github.com/gcommerce/groupcommerce-backend/internal/users"
	"github.com/gcommerce/groupcommerce-backend/pkg/auth/session"
	"github.com/gcommerce/groupcommerce-backend/pkg/config"
	"github.com/gcommerce/groupcommerce-backend/pkg/db"
	"github.com/gcommerce/groupcommerce-backend/pkg/logger"
	"github.com/gcommerce/groupcommerce-backend/pkg/metrics"
	"github.com/gcommerce/groupcommerce-backend/pkg/migrate"
	"github.com/gcommerce/groupcommerce-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	groupService, err := groups.NewService(groups.NewRepository(dbClient.DB()), groups.DefaultPluginRegistry())
	if err != nil {
		logg.Error(context.Background(), "failed to create group service", err)
		os.Exit(1)
	}

	contextManager, err := shoppingcontext.NewManager(redisClient, usersRepo, groupService, cfg.Context.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create context manager", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(ordersRepo, dbClient, contextManager, groupService)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	splitService, err := splitsvc.NewService(splitsvc.NewRepository(dbClient.DB()), ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create split service", err)
		os.Exit(1)
	}
	orderService.SetSplitMaintainer(splitService)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	globalPerms := middleware.NewGlobalPermissionEvaluator(groupService)
	resolver, err := accesspkg.NewResolver(groupService, groupService, globalPerms, metrics.NewAccessMetrics(registry))
	if err != nil {
		logg.Error(context.Background(), "failed to create access resolver", err)
		os.Exit(1)
	}

	splitChecker, err := splitsvc.NewAccessChecker(resolver, globalPerms)
	if err != nil {
		logg.Error(context.Background(), "failed to create split access checker", err)
		os.Exit(1)
	}

	splitHandlers, err := splits.NewHandlers(splitService, orderService, splitChecker, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create split handlers", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Sessions:       sessionManager,
			AuthService:    authService,
			Register:       registerService,
			Orders:         orderService,
			AccessResolver: resolver,
			SplitHandlers:  splitHandlers,
			ContextManager: contextManager,
			Registry:       registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
