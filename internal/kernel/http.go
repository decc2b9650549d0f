// Package kernel assembles the stockroom application: it opens the store,
// the cache and the report disk, builds the services on top of them and
// mounts the HTTP routes behind the global middleware stack.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/app/routes"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/config"
	"github.com/shashiranjanraj/stockroom/pkg/cache"
	"github.com/shashiranjanraj/stockroom/pkg/database"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/metrics"
	"github.com/shashiranjanraj/stockroom/pkg/middleware"
	"github.com/shashiranjanraj/stockroom/pkg/reqid"
	"github.com/shashiranjanraj/stockroom/pkg/router"
	"github.com/shashiranjanraj/stockroom/pkg/storage"
	"github.com/shashiranjanraj/stockroom/pkg/tracing"
	"gorm.io/gorm"
)

// Kernel owns the process-wide resources and the HTTP handler built on them.
type Kernel struct {
	DB       *gorm.DB
	Cache    cache.Store
	Disk     storage.Disk
	Services routes.Services
	router   *router.Router
}

// Boot opens every resource from configuration. Redis being unreachable is
// not fatal: the dashboard cache falls back to process memory.
func Boot(ctx context.Context) (*Kernel, error) {
	db, err := database.Open(database.ConfigFromEnv())
	if err != nil {
		return nil, err
	}

	store, err := cache.Connect(ctx)
	if err != nil {
		logger.Warn("cache: falling back to memory", "error", err)
	}

	disk, err := storage.FromConfig(ctx)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	return New(db, store, disk)
}

// New builds a kernel over already opened resources.
func New(db *gorm.DB, store cache.Store, disk storage.Disk) (*Kernel, error) {
	k := &Kernel{
		DB:       db,
		Cache:    store,
		Disk:     disk,
		Services: NewServices(db, store, disk),
	}

	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics
	//  2. Tracing span per request
	//  3. Request ID, before anything logs
	//  4. Logger, tagged with the request ID
	//  5. Recovery, so panics are logged with the request ID
	//  6. CORS
	//  7. Rate limiter
	r.Use(metrics.Middleware())
	r.Use(tracing.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))

	if err := routes.RegisterAPI(r, k.Services); err != nil {
		return nil, fmt.Errorf("kernel: register routes: %w", err)
	}
	k.router = r
	return k, nil
}

// NewServices wires repositories and services over the given resources.
func NewServices(db *gorm.DB, store cache.Store, disk storage.Disk) routes.Services {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	loc := config.Location()

	users := repositories.NewUserRepository(db)
	categories := repositories.NewCategoryRepository(db)
	suppliers := repositories.NewSupplierRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)

	dashboard := services.NewDashboardService(products, orders, store, services.DashboardOptions{
		LowStockThreshold:         config.LowStockThreshold(),
		CustomerLowStockThreshold: config.CustomerLowStockThreshold(),
		CacheTTL:                  config.DashboardCacheTTL(),
		Location:                  loc,
	})

	fulfillment := services.NewFulfillmentService(repositories.NewUnitOfWork(db), orders, users, services.FulfillmentOptions{
		ConflictRetries: config.OrderConflictRetries(),
		Location:        loc,
		Invalidator:     dashboard,
	})

	return routes.Services{
		Auth:        services.NewAuthService(users),
		Catalog:     services.NewCatalogService(categories, suppliers, products, dashboard),
		Fulfillment: fulfillment,
		Dashboard:   dashboard,
		Reports:     services.NewReportService(fulfillment, disk, loc),
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	}
}

// Handler returns the HTTP handler with every route mounted.
func (k *Kernel) Handler() http.Handler {
	return k.router.Handler()
}

// Routes lists the mounted routes.
func (k *Kernel) Routes() []router.RouteInfo {
	return k.router.Routes()
}

// Close releases the cache connection and the database pool.
func (k *Kernel) Close() error {
	var errs []error
	if rs, ok := k.Cache.(*cache.RedisStore); ok {
		errs = append(errs, rs.Close())
	}
	errs = append(errs, database.Close(k.DB))
	return errors.Join(errs...)
}
