package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/pkg/cache"
	"github.com/shashiranjanraj/stockroom/pkg/collection"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/tracing"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	ScopeAdmin    = "admin"
	ScopeCustomer = "customer"

	recentOrderCount = 5
	generationKey    = "dashboard:generation"
)

// ProductStock is the dashboard's view of one product.
type ProductStock struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
	Price    decimal.Decimal `json:"price"`
}

// BestSeller is the product with the most units sold across all orders.
type BestSeller struct {
	ProductName string `json:"productName"`
	Category    string `json:"category"`
	Units       int64  `json:"units"`
}

type AdminSummary struct {
	TotalProducts     int64           `json:"totalProducts"`
	TotalStockUnits   int64           `json:"totalStockUnits"`
	OrdersToday       []models.Order  `json:"ordersToday"`
	OrdersTodayCount  int             `json:"ordersTodayCount"`
	TodaysRevenue     decimal.Decimal `json:"todaysRevenue"`
	BestSeller        *BestSeller     `json:"bestSeller"`
	OutOfStock        []ProductStock  `json:"outOfStock"`
	LowStock          []ProductStock  `json:"lowStock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
}

type CustomerSummary struct {
	OrderCount         int             `json:"orderCount"`
	TotalSpend         decimal.Decimal `json:"totalSpend"`
	LastOrder          *models.Order   `json:"lastOrder"`
	RecentOrders       []models.Order  `json:"recentOrders"`
	ActiveProducts     []ProductStock  `json:"activeProducts"`
	ActiveProductCount int             `json:"activeProductCount"`
	LowStockCount      int             `json:"lowStockCount"`
	LowStockThreshold  int             `json:"lowStockThreshold"`
}

// DashboardSummary holds exactly one of Admin or Customer, per Scope.
type DashboardSummary struct {
	Scope       string           `json:"scope"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Admin       *AdminSummary    `json:"admin,omitempty"`
	Customer    *CustomerSummary `json:"customer,omitempty"`
}

// DashboardOptions tunes a DashboardService.
type DashboardOptions struct {
	LowStockThreshold         int
	CustomerLowStockThreshold int
	// CacheTTL of zero disables summary caching.
	CacheTTL time.Duration
	Location *time.Location
	Now      func() time.Time
}

type catalogReader interface {
	Figures(ctx context.Context) (repositories.StockFigures, error)
	OutOfStock(ctx context.Context) ([]models.Product, error)
	LowStock(ctx context.Context, threshold int) ([]models.Product, error)
	InStock(ctx context.Context) ([]models.Product, error)
}

type salesReader interface {
	List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, error)
	BestSeller(ctx context.Context) (repositories.ProductSales, bool, error)
}

// DashboardService answers the read-side questions over the catalog and
// the ledger. Every query is a point-in-time read and never mutates state.
type DashboardService struct {
	products catalogReader
	orders   salesReader
	cache    cache.Store
	opts     DashboardOptions
	tracer   trace.Tracer
}

func NewDashboardService(products catalogReader, orders salesReader, store cache.Store, opts DashboardOptions) *DashboardService {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 10
	}
	if opts.CustomerLowStockThreshold <= 0 {
		opts.CustomerLowStockThreshold = 5
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DashboardService{
		products: products,
		orders:   orders,
		cache:    store,
		opts:     opts,
		tracer:   tracing.Tracer("stockroom/dashboard"),
	}
}

// Summary builds the dashboard for scope. Customers may only request their
// own customer scope; admins may request either.
func (s *DashboardService) Summary(ctx context.Context, scope string, who Identity) (DashboardSummary, error) {
	if err := requireAuthenticated(who); err != nil {
		return DashboardSummary{}, err
	}
	if scope == "" {
		scope = who.Role
	}
	switch scope {
	case ScopeAdmin:
		if !who.IsAdmin() {
			return DashboardSummary{}, forbidden("admin role required")
		}
	case ScopeCustomer:
	default:
		return DashboardSummary{}, validationError(map[string]string{"scope": "The selected scope is invalid."})
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.summary", trace.WithAttributes(attribute.String("dashboard.scope", scope)))
	defer span.End()

	now := s.opts.Now()
	key := s.cacheKey(ctx, scope, who, now)

	var summary DashboardSummary
	if key != "" && cache.GetJSON(ctx, s.cache, key, &summary) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return summary, nil
	}

	summary = DashboardSummary{Scope: scope, GeneratedAt: now.UTC()}
	var err error
	if scope == ScopeAdmin {
		var admin AdminSummary
		admin, err = s.adminSummary(ctx, now)
		summary.Admin = &admin
	} else {
		var customer CustomerSummary
		customer, err = s.customerSummary(ctx, who)
		summary.Customer = &customer
	}
	if err != nil {
		tracing.RecordError(span, err)
		return DashboardSummary{}, err
	}

	if key != "" {
		if err := cache.SetJSON(ctx, s.cache, key, summary, s.opts.CacheTTL); err != nil {
			logger.WithCtx(ctx).Warn("dashboard cache write failed", "error", err)
		}
	}
	return summary, nil
}

// Invalidate makes every cached summary stale by moving to a new cache
// generation.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	if _, err := s.cache.Incr(ctx, generationKey); err != nil {
		logger.WithCtx(ctx).Warn("dashboard cache invalidation failed", "error", err)
	}
}

// cacheKey returns "" when caching is off or the generation cannot be read.
func (s *DashboardService) cacheKey(ctx context.Context, scope string, who Identity, now time.Time) string {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return ""
	}

	var gen int64
	raw, err := s.cache.Get(ctx, generationKey)
	switch {
	case err == nil:
		gen, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return ""
		}
	case !errors.Is(err, cache.ErrMiss):
		return ""
	}

	day := now.In(s.opts.Location).Format("2006-01-02")
	if scope == ScopeAdmin {
		return fmt.Sprintf("dashboard:%d:%s:admin", gen, day)
	}
	return fmt.Sprintf("dashboard:%d:%s:customer:%d", gen, day, who.UserID)
}

func (s *DashboardService) adminSummary(ctx context.Context, now time.Time) (AdminSummary, error) {
	figures, err := s.products.Figures(ctx)
	if err != nil {
		return AdminSummary{}, storageError(ctx, "products", err)
	}

	today, err := s.ordersOn(ctx, now)
	if err != nil {
		return AdminSummary{}, err
	}

	best, err := s.BestSeller(ctx)
	if err != nil {
		return AdminSummary{}, err
	}

	out, err := s.OutOfStock(ctx)
	if err != nil {
		return AdminSummary{}, err
	}

	low, err := s.LowStock(ctx, s.opts.LowStockThreshold)
	if err != nil {
		return AdminSummary{}, err
	}

	return AdminSummary{
		TotalProducts:     figures.Products,
		TotalStockUnits:   figures.StockUnits,
		OrdersToday:       today,
		OrdersTodayCount:  len(today),
		TodaysRevenue:     Revenue(today),
		BestSeller:        best,
		OutOfStock:        out,
		LowStock:          low,
		LowStockThreshold: s.opts.LowStockThreshold,
	}, nil
}

func (s *DashboardService) customerSummary(ctx context.Context, who Identity) (CustomerSummary, error) {
	id := who.UserID
	mine, err := s.orders.List(ctx, repositories.OrderFilter{CustomerID: &id})
	if err != nil {
		return CustomerSummary{}, storageError(ctx, "orders", err)
	}

	inStock, err := s.products.InStock(ctx)
	if err != nil {
		return CustomerSummary{}, storageError(ctx, "products", err)
	}

	low, err := s.products.LowStock(ctx, s.opts.CustomerLowStockThreshold)
	if err != nil {
		return CustomerSummary{}, storageError(ctx, "products", err)
	}

	summary := CustomerSummary{
		OrderCount:         len(mine),
		TotalSpend:         Revenue(mine),
		RecentOrders:       orEmpty(collection.Take(mine, recentOrderCount)),
		ActiveProducts:     collection.Map(inStock, toProductStock),
		ActiveProductCount: len(inStock),
		LowStockCount:      len(low),
		LowStockThreshold:  s.opts.CustomerLowStockThreshold,
	}
	if len(mine) > 0 {
		last := mine[0]
		summary.LastOrder = &last
	}
	return summary, nil
}

// TotalProducts counts catalog entries.
func (s *DashboardService) TotalProducts(ctx context.Context) (int64, error) {
	f, err := s.products.Figures(ctx)
	if err != nil {
		return 0, storageError(ctx, "products", err)
	}
	return f.Products, nil
}

// TotalStockUnits sums stock across the catalog.
func (s *DashboardService) TotalStockUnits(ctx context.Context) (int64, error) {
	f, err := s.products.Figures(ctx)
	if err != nil {
		return 0, storageError(ctx, "products", err)
	}
	return f.StockUnits, nil
}

// OrdersToday returns orders whose business date falls on the current
// calendar day in the configured location, newest first.
func (s *DashboardService) OrdersToday(ctx context.Context) ([]models.Order, error) {
	return s.ordersOn(ctx, s.opts.Now())
}

func (s *DashboardService) ordersOn(ctx context.Context, day time.Time) ([]models.Order, error) {
	from, to := dayBounds(day.In(s.opts.Location), s.opts.Location)
	orders, err := s.orders.List(ctx, repositories.OrderFilter{From: &from, To: &to})
	if err != nil {
		return nil, storageError(ctx, "orders", err)
	}
	return orEmpty(orders), nil
}

// TodaysRevenue sums totalPrice over OrdersToday.
func (s *DashboardService) TodaysRevenue(ctx context.Context) (decimal.Decimal, error) {
	orders, err := s.OrdersToday(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Revenue(orders), nil
}

// BestSeller returns nil when no order exists.
func (s *DashboardService) BestSeller(ctx context.Context) (*BestSeller, error) {
	sales, ok, err := s.orders.BestSeller(ctx)
	if err != nil {
		return nil, storageError(ctx, "orders", err)
	}
	if !ok {
		return nil, nil
	}
	return &BestSeller{ProductName: sales.ProductName, Category: sales.Category, Units: sales.Units}, nil
}

// OutOfStock lists products with zero stock.
func (s *DashboardService) OutOfStock(ctx context.Context) ([]ProductStock, error) {
	products, err := s.products.OutOfStock(ctx)
	if err != nil {
		return nil, storageError(ctx, "products", err)
	}
	return collection.Map(products, toProductStock), nil
}

// LowStock lists products with 0 < stock <= threshold, lowest first.
func (s *DashboardService) LowStock(ctx context.Context, threshold int) ([]ProductStock, error) {
	products, err := s.products.LowStock(ctx, threshold)
	if err != nil {
		return nil, storageError(ctx, "products", err)
	}
	return collection.Map(products, toProductStock), nil
}

// Revenue sums the total price of orders.
func Revenue(orders []models.Order) decimal.Decimal {
	return collection.Reduce(orders, decimal.Zero, func(sum decimal.Decimal, o models.Order) decimal.Decimal {
		return sum.Add(o.TotalPrice)
	})
}

func toProductStock(p models.Product) ProductStock {
	return ProductStock{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.CategoryName(),
		Stock:    p.Stock,
		Price:    p.Price,
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
