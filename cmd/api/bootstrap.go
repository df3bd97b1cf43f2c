package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/phoolcraft/phool-backend/api/controllers"
	"github.com/phoolcraft/phool-backend/api/middleware"
	"github.com/phoolcraft/phool-backend/api/routes"
	"github.com/phoolcraft/phool-backend/internal/basket"
	"github.com/phoolcraft/phool-backend/internal/cards"
	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/internal/checkout"
	"github.com/phoolcraft/phool-backend/internal/fundraisers"
	"github.com/phoolcraft/phool-backend/internal/notifications"
	"github.com/phoolcraft/phool-backend/internal/orders"
	"github.com/phoolcraft/phool-backend/internal/products"
	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/internal/reviews"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/metrics"
	"github.com/phoolcraft/phool-backend/pkg/migrate"
	"github.com/phoolcraft/phool-backend/pkg/redis"
	"github.com/phoolcraft/phool-backend/pkg/storage/s3"
)

type application struct {
	deps     routes.Dependencies
	notifier *notifications.Notifier
	closers  []func() error
	logg     *logger.Logger
}

func (a *application) close(ctx context.Context) {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	if err != nil {
		a.logg.Error(ctx, "error closing resources", err)
	}
}

// bootstrap connects the optional backends and builds every service. A
// missing database, Redis or bucket degrades the matching feature instead
// of failing startup.
func bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*application, error) {
	app := &application{logg: logg}
	var readiness []controllers.ReadinessCheck

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cacheMetrics := metrics.NewCacheMetrics(reg)
	notifyMetrics := metrics.NewNotifyMetrics(reg)

	var blobs remote.BlobStore
	if cfg.Storage.Enabled() {
		client, err := s3.NewClient(ctx, cfg.Storage, logg)
		if err != nil {
			return nil, err
		}
		blobs = client
		readiness = append(readiness, controllers.ReadinessCheck{Name: "storage", Pinger: client})
	} else {
		logg.Warn(ctx, "object storage not configured, image uploads disabled")
	}

	store := remote.NewUnconfiguredStore(blobs)
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	switch {
	case errors.Is(err, db.ErrNotConfigured):
		logg.Warn(ctx, "database not configured, catalog is empty and orders go to the backup log")
	case err != nil:
		return nil, err
	default:
		app.closers = append(app.closers, dbClient.Close)
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return nil, err
		}
		store = remote.NewGormStore(dbClient.DB(), blobs)
		readiness = append(readiness, controllers.ReadinessCheck{Name: "database", Pinger: dbClient})
	}

	var kv localstore.Store
	var limiter middleware.Limiter
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, redisClient.Close)
		kv = localstore.NewRedis(redisClient)
		limiter = middleware.NewRedisLimiter(redisClient)
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	} else {
		limiter = middleware.NewMemoryLimiter()
		if cfg.Basket.DataDir != "" {
			file, err := localstore.NewFile(cfg.Basket.DataDir)
			if err != nil {
				return nil, err
			}
			kv = file
		} else {
			kv = localstore.NewMemory()
		}
	}

	productRepo := products.NewRepository(store.Products, cfg.Cache.ProductsTTL, logg, cacheMetrics)
	cardRepo := cards.NewRepository(store.Cards, cfg.Cache.CardsTTL, logg, cacheMetrics)
	productSvc, err := products.NewService(productRepo, store.Blobs, cfg.Storage, logg)
	if err != nil {
		return nil, err
	}
	cardSvc, err := cards.NewService(cardRepo, store.Blobs, cfg.Storage, logg)
	if err != nil {
		return nil, err
	}
	catalogSvc, err := catalog.NewService(productRepo, cardRepo)
	if err != nil {
		return nil, err
	}
	fundraiserSvc, err := fundraisers.NewService(fundraisers.NewRepository(store.Fundraisers, cfg.Cache.FundraisersTTL, logg, cacheMetrics))
	if err != nil {
		return nil, err
	}
	reviewSvc, err := reviews.NewService(reviews.NewRepository(store.Reviews, cfg.Cache.ReviewsTTL, logg, cacheMetrics), productRepo)
	if err != nil {
		return nil, err
	}
	basketSvc, err := basket.NewService(basket.NewManager(kv, cfg.Basket.StorageKey, logg), catalogSvc, logg)
	if err != nil {
		return nil, err
	}

	backup := orders.NewBackupLog(kv, cfg.Checkout.BackupKey, logg)
	orderRepo := orders.NewRepository(store.Orders, logg)
	orderSvc, err := orders.NewService(orderRepo, backup, logg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Notify.Timeout}
	app.notifier = notifications.NewNotifier(notifications.Params{
		Email:   notifications.NewEmailJSClient(cfg.EmailJS, httpClient),
		Sheets:  notifications.NewSheetsClient(cfg.Sheets, httpClient),
		Backup:  backup,
		Timeout: cfg.Notify.Timeout,
		Logger:  logg,
		Metrics: notifyMetrics,
	})

	checkoutSvc, err := checkout.NewService(checkout.Params{
		Baskets:      basketSvc,
		Orders:       orderRepo,
		IDs:          orders.NewIDGenerator(),
		Notifier:     app.notifier,
		Backup:       backup,
		Promos:       checkout.NewPromoTable(cfg.Checkout.PromoCodes),
		GiftWrapCost: cfg.Checkout.GiftWrapCost,
		Logger:       logg,
	})
	if err != nil {
		return nil, err
	}

	app.deps = routes.Dependencies{
		Catalog:     catalogSvc,
		Products:    productSvc,
		Cards:       cardSvc,
		Fundraisers: fundraiserSvc,
		Reviews:     reviewSvc,
		Baskets:     basketSvc,
		Checkout:    checkoutSvc,
		Orders:      orderSvc,
		Limiter:     limiter,
		LocalStore:  kv,
		Readiness:   readiness,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
	return app, nil
}
