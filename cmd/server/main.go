package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-order-service/internal/config"
	httpctl "meal-order-service/internal/controllers/http"
	"meal-order-service/internal/infra"
	"meal-order-service/internal/infra/database"
	"meal-order-service/internal/infra/rabbitmq"
	"meal-order-service/internal/logging"
	"meal-order-service/internal/repository/gormrepo"
	"meal-order-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding base.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir, os.Getenv("APP_ENV"))
	if err != nil {
		logging.Base().Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	loc, _ := cfg.Location()
	initial, _ := cfg.InitialStatuses()
	defaults, _ := cfg.DefaultPolicy()

	db, err := database.Open(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		log.Error("db: connect", "error", err)
		os.Exit(1)
	}

	orderRepo := gormrepo.NewOrderRepository(db)
	settingsRepo := gormrepo.NewSettingsRepository(db)
	if err := settingsRepo.EnsureDefaults(context.Background(), defaults); err != nil {
		log.Error("settings seed failed", "error", err)
		os.Exit(1)
	}

	var menuCache infra.MenuCache
	if cfg.Redis.Addr != "" {
		menuCache = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
	}
	catalog := infra.NewCachedMenuCatalog(
		infra.NewMenuClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout),
		menuCache,
		cfg.Redis.MenuTTL,
	)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.Rabbit.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Error("failed to init publisher", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	} else {
		log.Warn("rabbitmq url not set, order events are dropped")
	}

	settings := services.NewSettingsService(settingsRepo)
	orders := services.NewOrderService(orderRepo, catalog, settings, publisher,
		services.WithLocation(loc),
		services.WithInitialStatus(initial),
	)
	subsidy := services.NewSubsidyService(orderRepo, settings)

	gin.SetMode(gin.ReleaseMode)
	router := httpctl.NewRouter(httpctl.NewHandler(orders, subsidy, settings), logging.New("http"))

	srv := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting meal order service", "addr", cfg.App.HTTPAddr, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server run", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	log.Info("server stopped")
}
