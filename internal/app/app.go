// Package app wires the storefront engine together: remote client, session,
// aggregates, catalog, and the local HTTP API.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openshelf/storefront/internal/cache"
	"github.com/openshelf/storefront/internal/cart"
	"github.com/openshelf/storefront/internal/catalog"
	"github.com/openshelf/storefront/internal/config"
	"github.com/openshelf/storefront/internal/event"
	"github.com/openshelf/storefront/internal/favorites"
	handler "github.com/openshelf/storefront/internal/handler/http"
	"github.com/openshelf/storefront/internal/remote"
	"github.com/openshelf/storefront/internal/session"
	"github.com/openshelf/storefront/internal/view"
	"github.com/openshelf/storefront/pkg/health"
)

// aggregates groups the session-following state so the auth endpoints can
// reload or drop everything in one call.
type aggregates struct {
	cart      *cart.Aggregate
	favorites *favorites.Set
}

func (a aggregates) Reload(ctx context.Context) error {
	if err := a.cart.Reconcile(ctx); err != nil {
		return err
	}
	return a.favorites.Load(ctx)
}

func (a aggregates) Reset() {
	a.cart.Reset()
	a.favorites.Reset()
}

// App wires together all dependencies and runs the storefront engine.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	publisher  *event.KafkaPublisher
	httpServer *http.Server
	aggregates aggregates
	session    *session.Store
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Session and remote client. The client invalidates the session on 401,
	// so the store doubles as the credential source.
	store := session.NewStore(cfg.CredentialFile, logger)

	clientCfg := remote.DefaultConfig(cfg.BackendOrigin)
	clientCfg.Timeout = cfg.BackendTimeout
	client, err := remote.New(clientCfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	if cfg.BreakerEnabled {
		client.EnableBreaker(remote.DefaultBreakerConfig("backend"), logger)
	}

	// Optional catalog cache.
	var rdb *redis.Client
	var catalogCache *cache.Catalog
	if cfg.CacheEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		catalogCache = cache.NewCatalog(rdb, cfg.CatalogTTL)
		logger.Info("catalog cache enabled",
			slog.String("addr", cfg.RedisAddr),
			slog.Duration("ttl", cfg.CatalogTTL),
		)
	}

	// Optional activity event stream.
	var publisher *event.KafkaPublisher
	var events event.Publisher = event.Noop{}
	if cfg.EventsEnabled() {
		kafkaCfg := event.DefaultKafkaConfig(cfg.KafkaBrokers)
		kafkaCfg.Topic = cfg.ActivityTopic
		publisher = event.NewKafkaPublisher(kafkaCfg, logger)
		events = publisher
		logger.Info("activity events enabled", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	catalogStore := catalog.New(client, catalogCache, logger)
	cartAgg := cart.New(client, store, events, logger)
	favSet := favorites.New(client, store, events, logger)
	authSvc := session.NewService(store, client, events, logger)
	composer := view.NewComposer(client.Origin(), favSet, cartAgg)

	aggs := aggregates{cart: cartAgg, favorites: favSet}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("backend", client.Ping)
	if rdb != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	if publisher != nil {
		healthHandler.Register("kafka", publisher.Ping)
	}

	// HTTP router.
	handlers := handler.Handlers{
		Views:     handler.NewViewsHandler(catalogStore, composer, logger),
		Cart:      handler.NewCartHandler(cartAgg, catalogStore, logger),
		Favorites: handler.NewFavoritesHandler(favSet, logger),
		Auth:      handler.NewAuthHandler(authSvc, client, store, aggs, logger),
		Orders:    handler.NewOrdersHandler(cartAgg, client, logger),
	}
	router := handler.NewRouter(handlers, healthHandler, store, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		publisher:  publisher,
		httpServer: httpServer,
		aggregates: aggs,
		session:    store,
	}, nil
}

// Run restores the persisted session, pulls the shopper's server-side state,
// then serves the HTTP API until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if sess := a.session.Restore(); sess.Authenticated {
		// Best effort: a dead backend at startup must not stop the engine.
		loadCtx, cancel := context.WithTimeout(ctx, a.cfg.BackendTimeout)
		if err := a.aggregates.Reload(loadCtx); err != nil {
			a.logger.Warn("initial shopper state load failed",
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("kafka publisher close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
