package services_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/database/dbtest"
)

// fixture is a migrated database with one category and one supplier.
type fixture struct {
	db         *gorm.DB
	categories *repositories.CategoryRepository
	suppliers  *repositories.SupplierRepository
	products   *repositories.ProductRepository
	orders     *repositories.OrderRepository
	users      *repositories.UserRepository
	category   models.Category
	supplier   models.Supplier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, dbtest.New(t))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		db:         db,
		categories: repositories.NewCategoryRepository(db),
		suppliers:  repositories.NewSupplierRepository(db),
		products:   repositories.NewProductRepository(db),
		orders:     repositories.NewOrderRepository(db),
		users:      repositories.NewUserRepository(db),
	}

	ctx := context.Background()
	f.category = models.Category{Name: "Hardware"}
	require.NoError(t, f.categories.Create(ctx, &f.category))
	f.supplier = models.Supplier{Name: "Acme", Email: "sales@acme.example"}
	require.NoError(t, f.suppliers.Create(ctx, &f.supplier))
	return f
}

func (f *fixture) product(t *testing.T, name string, stock int, price string) models.Product {
	t.Helper()
	p := models.Product{
		Name:       name,
		Stock:      stock,
		Price:      decimal.RequireFromString(price),
		CategoryID: f.category.ID,
		SupplierID: f.supplier.ID,
	}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

func (f *fixture) user(t *testing.T, email, role string) services.Identity {
	t.Helper()
	u := models.User{
		Name:     "User " + email,
		Email:    email,
		Address:  "1 Main Street",
		Role:     role,
		Password: "unused",
	}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return services.Identity{UserID: u.ID, Role: role}
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	n, err := f.products.StockOf(context.Background(), id)
	require.NoError(t, err)
	return n
}

func (f *fixture) ledgerSize(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

// appendOrder writes a ledger row directly, bypassing placement.
func (f *fixture) appendOrder(t *testing.T, p models.Product, qty int, date time.Time, customer *uint) models.Order {
	t.Helper()
	o := models.Order{
		Reference:   uuid.NewString(),
		CustomerID:  customer,
		ProductID:   &p.ID,
		ProductName: p.Name,
		Category:    f.category.Name,
		Quantity:    qty,
		UnitPrice:   p.Price,
		TotalPrice:  p.Price.Mul(decimal.NewFromInt(int64(qty))),
		Date:        date.UTC(),
	}
	require.NoError(t, f.orders.Append(context.Background(), &o))
	return o
}

// countingInvalidator records how often the dashboard would be refreshed.
type countingInvalidator struct{ n atomic.Int32 }

func (c *countingInvalidator) Invalidate(context.Context) { c.n.Add(1) }

func (f *fixture) fulfillment(opts services.FulfillmentOptions) *services.FulfillmentService {
	return services.NewFulfillmentService(repositories.NewUnitOfWork(f.db), f.orders, f.users, opts)
}
