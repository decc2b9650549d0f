package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/cache"
)

var dashboardNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func (f *fixture) dashboard(store cache.Store, ttl time.Duration) *services.DashboardService {
	return services.NewDashboardService(f.products, f.orders, store, services.DashboardOptions{
		LowStockThreshold:         10,
		CustomerLowStockThreshold: 5,
		CacheTTL:                  ttl,
		Location:                  time.UTC,
		Now:                       func() time.Time { return dashboardNow },
	})
}

func TestDashboard_TodaysRevenueExcludesOtherDays(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 20, "50.00")
	hammer := f.product(t, "Hammer", 20, "125.00")

	f.appendOrder(t, widget, 2, dashboardNow.Add(-3*time.Hour), nil)
	f.appendOrder(t, hammer, 2, dashboardNow.Add(-1*time.Hour), nil)
	f.appendOrder(t, widget, 1, dashboardNow.AddDate(0, 0, -1), nil)

	svc := f.dashboard(nil, 0)
	ctx := context.Background()

	today, err := svc.OrdersToday(ctx)
	require.NoError(t, err)
	require.Len(t, today, 2)

	revenue, err := svc.TodaysRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "350.00", revenue.StringFixed(2))

	total, err := svc.TotalProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	units, err := svc.TotalStockUnits(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 40, units)
}

func TestDashboard_BestSeller(t *testing.T) {
	f := newFixture(t)
	svc := f.dashboard(nil, 0)
	ctx := context.Background()

	best, err := svc.BestSeller(ctx)
	require.NoError(t, err)
	assert.Nil(t, best, "empty ledger has no best seller")

	beta := f.product(t, "Beta", 20, "1.00")
	alpha := f.product(t, "Alpha", 20, "1.00")
	f.appendOrder(t, beta, 2, dashboardNow, nil)
	f.appendOrder(t, beta, 1, dashboardNow, nil)
	f.appendOrder(t, alpha, 3, dashboardNow.AddDate(0, -1, 0), nil)

	best, err = svc.BestSeller(ctx)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "Alpha", best.ProductName, "ties go to the lexically first name")
	assert.EqualValues(t, 3, best.Units)

	f.appendOrder(t, beta, 1, dashboardNow, nil)
	best, err = svc.BestSeller(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Beta", best.ProductName)
	assert.EqualValues(t, 4, best.Units)
	assert.Equal(t, "Hardware", best.Category)
}

func TestDashboard_StockLevels(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Empty", 0, "1.00")
	f.product(t, "Three", 3, "1.00")
	f.product(t, "Ten", 10, "1.00")
	f.product(t, "Eleven", 11, "1.00")
	svc := f.dashboard(nil, 0)
	ctx := context.Background()

	out, err := svc.OutOfStock(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Empty", out[0].Name)

	low, err := svc.LowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Three", low[0].Name)
	assert.Equal(t, "Ten", low[1].Name)

	low, err = svc.LowStock(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, low)
}

func TestDashboard_AdminSummary(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 6, "5.00")
	f.product(t, "Fountain Pen", 0, "32.00")
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	f.appendOrder(t, widget, 4, dashboardNow, nil)

	summary, err := f.dashboard(nil, 0).Summary(context.Background(), "", admin)
	require.NoError(t, err)

	assert.Equal(t, services.ScopeAdmin, summary.Scope)
	assert.Nil(t, summary.Customer)
	require.NotNil(t, summary.Admin)
	a := summary.Admin
	assert.EqualValues(t, 2, a.TotalProducts)
	assert.EqualValues(t, 6, a.TotalStockUnits)
	assert.Equal(t, 1, a.OrdersTodayCount)
	assert.Equal(t, "20.00", a.TodaysRevenue.StringFixed(2))
	require.NotNil(t, a.BestSeller)
	assert.Equal(t, "Widget", a.BestSeller.ProductName)
	require.Len(t, a.OutOfStock, 1)
	require.Len(t, a.LowStock, 1)
	assert.Equal(t, 10, a.LowStockThreshold)
}

func TestDashboard_CustomerSummary(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 4, "5.00")
	f.product(t, "Hammer", 25, "18.50")
	f.product(t, "Fountain Pen", 0, "32.00")
	ann := f.user(t, "ann@example.com", models.RoleCustomer)
	bob := f.user(t, "bob@example.com", models.RoleCustomer)

	for i := 0; i < 6; i++ {
		f.appendOrder(t, widget, 1, dashboardNow.Add(time.Duration(i)*time.Minute), &ann.UserID)
	}
	f.appendOrder(t, widget, 2, dashboardNow, &bob.UserID)

	svc := f.dashboard(nil, 0)
	summary, err := svc.Summary(context.Background(), "", ann)
	require.NoError(t, err)
	require.NotNil(t, summary.Customer)
	assert.Nil(t, summary.Admin)

	c := summary.Customer
	assert.Equal(t, 6, c.OrderCount)
	assert.Equal(t, "30.00", c.TotalSpend.StringFixed(2))
	assert.Len(t, c.RecentOrders, 5)
	require.NotNil(t, c.LastOrder)
	assert.Equal(t, c.RecentOrders[0].ID, c.LastOrder.ID)
	assert.Equal(t, 2, c.ActiveProductCount)
	assert.Len(t, c.ActiveProducts, 2)
	assert.Equal(t, 1, c.LowStockCount, "only Widget is at or below 5")

	_, err = svc.Summary(context.Background(), services.ScopeAdmin, ann)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = svc.Summary(context.Background(), "weekly", ann)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Summary(context.Background(), "", services.Identity{})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestDashboard_NewCustomerHasEmptySummary(t *testing.T) {
	f := newFixture(t)
	who := f.user(t, "new@example.com", models.RoleCustomer)

	summary, err := f.dashboard(nil, 0).Summary(context.Background(), services.ScopeCustomer, who)
	require.NoError(t, err)
	c := summary.Customer
	assert.Equal(t, 0, c.OrderCount)
	assert.True(t, c.TotalSpend.IsZero())
	assert.Nil(t, c.LastOrder)
	assert.NotNil(t, c.RecentOrders)
	assert.Empty(t, c.RecentOrders)
}

func TestDashboard_CacheServesUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 10, "5.00")
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	svc := f.dashboard(cache.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	first, err := svc.Summary(ctx, services.ScopeAdmin, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Admin.OrdersTodayCount)

	// written behind the service's back: the cached copy is still served
	f.appendOrder(t, widget, 1, dashboardNow, nil)
	cached, err := svc.Summary(ctx, services.ScopeAdmin, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.Admin.OrdersTodayCount)

	svc.Invalidate(ctx)
	fresh, err := svc.Summary(ctx, services.ScopeAdmin, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Admin.OrdersTodayCount)
}

func TestDashboard_PlacementInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Widget", 10, "5.00")
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	dash := f.dashboard(cache.NewMemoryStore(), time.Minute)
	svc := f.fulfillment(services.FulfillmentOptions{
		Invalidator: dash,
		Location:    time.UTC,
		Now:         func() time.Time { return dashboardNow },
	})
	ctx := context.Background()

	before, err := dash.Summary(ctx, services.ScopeAdmin, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 10, before.Admin.TotalStockUnits)

	_, err = svc.PlaceOrder(ctx, services.PlaceOrderInput{ProductName: "Widget", Category: "Hardware", Quantity: 4}, admin)
	require.NoError(t, err)

	after, err := dash.Summary(ctx, services.ScopeAdmin, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 6, after.Admin.TotalStockUnits)
	assert.Equal(t, 1, after.Admin.OrdersTodayCount)
}
