package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/farhanmaulana/cetakin-backend/api/controllers"
	"github.com/farhanmaulana/cetakin-backend/api/routes"
	"github.com/farhanmaulana/cetakin-backend/internal/assets"
	authsvc "github.com/farhanmaulana/cetakin-backend/internal/auth"
	cartsvc "github.com/farhanmaulana/cetakin-backend/internal/cart"
	"github.com/farhanmaulana/cetakin-backend/internal/catalog"
	orderssvc "github.com/farhanmaulana/cetakin-backend/internal/orders"
	storefrontsvc "github.com/farhanmaulana/cetakin-backend/internal/storefront"
	"github.com/farhanmaulana/cetakin-backend/pkg/auth/session"
	"github.com/farhanmaulana/cetakin-backend/pkg/config"
	"github.com/farhanmaulana/cetakin-backend/pkg/db"
	"github.com/farhanmaulana/cetakin-backend/pkg/docstore"
	"github.com/farhanmaulana/cetakin-backend/pkg/imagehost"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
	"github.com/farhanmaulana/cetakin-backend/pkg/metrics"
	"github.com/farhanmaulana/cetakin-backend/pkg/migrate"
	"github.com/farhanmaulana/cetakin-backend/pkg/redis"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	mongoClient, err := docstore.New(context.Background(), cfg.Mongo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap document store", err)
		os.Exit(1)
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		closeErr := multierr.Combine(
			dbClient.Close(),
			redisClient.Close(),
			mongoClient.Close(closeCtx),
		)
		if closeErr != nil {
			logg.Error(context.Background(), "error closing clients", closeErr)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	catalogService := loadPaperCatalog(cfg, logg)

	documents, err := docstore.NewStore(mongoClient, "documents")
	if err != nil {
		logg.Error(context.Background(), "failed to open document store", err)
		os.Exit(1)
	}

	imageHost, err := imagehost.NewClient(cfg.ImageHost)
	if err != nil {
		logg.Error(context.Background(), "failed to create image host client", err)
		os.Exit(1)
	}

	mailer, err := authsvc.NewMailer(cfg.Mailer, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(redisClient, documents, sessionManager, mailer, cfg.JWT, cfg.Mailer, storefrontMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	assetsService, err := assets.NewService(imageHost, cfg.Upload.MaxAssets, storefrontMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create assets service", err)
		os.Exit(1)
	}

	ordersService, err := orderssvc.NewService(catalogService, cfg.Upload.MaxAssets, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(documents, redisClient, storefrontMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	storefrontService, err := storefrontsvc.NewService(storefrontsvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create storefront service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Redis:    redisClient,
		Sessions: sessionManager,
		Registry: registry,
		HealthDeps: map[string]controllers.Pinger{
			"database":       dbClient,
			"redis":          redisClient,
			"document store": mongoClient,
		},
		Catalog:    catalogService,
		Storefront: storefrontService,
		Auth:       authService,
		Assets:     assetsService,
		Orders:     ordersService,
		Cart:       cartService,
	})

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
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

// loadPaperCatalog fetches the paper list once at boot. A failed fetch is
// logged and leaves the storefront with an empty catalog rather than a
// crashed process.
func loadPaperCatalog(cfg *config.Config, logg *logger.Logger) catalog.Service {
	loader, err := catalog.NewLoader(cfg.Catalog)
	if err != nil {
		logg.Error(context.Background(), "paper catalog loader misconfigured", err)
		return catalog.NewService(nil)
	}

	fetchCtx, cancel := context.WithTimeout(context.Background(), cfg.Catalog.FetchTimeout)
	defer cancel()

	papers, err := loader.Fetch(fetchCtx)
	if err != nil {
		logg.Error(context.Background(), "paper catalog fetch failed, starting with empty catalog", err)
		return catalog.NewService(nil)
	}

	ctx := logg.WithField(context.Background(), "paper_types", len(papers))
	logg.Info(ctx, "paper catalog loaded")
	return catalog.NewService(papers)
}
