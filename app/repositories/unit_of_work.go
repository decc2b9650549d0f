package repositories

import (
	"context"

	"github.com/shashiranjanraj/stockroom/app/models"
	"gorm.io/gorm"
)

// Inventory is the slice of the stores a placement needs inside one
// transaction.
type Inventory interface {
	ProductByName(ctx context.Context, name string) (models.Product, error)
	ConditionalDecrementStock(ctx context.Context, productID uint, amount, expectedMinStock int) error
	AppendOrder(ctx context.Context, order *models.Order) error
	StockOf(ctx context.Context, productID uint) (int, error)
}

// UnitOfWork runs fn atomically: every write fn makes through the Inventory
// commits together, or none does when fn returns an error.
type UnitOfWork interface {
	Inventory(ctx context.Context, fn func(Inventory) error) error
}

// GormUnitOfWork implements UnitOfWork with a database transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Inventory(ctx context.Context, fn func(Inventory) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txInventory{
			products: NewProductRepository(tx),
			orders:   NewOrderRepository(tx),
		})
	})
}

type txInventory struct {
	products *ProductRepository
	orders   *OrderRepository
}

func (t txInventory) ProductByName(ctx context.Context, name string) (models.Product, error) {
	return t.products.FindByName(ctx, name)
}

func (t txInventory) ConditionalDecrementStock(ctx context.Context, productID uint, amount, expectedMinStock int) error {
	return t.products.ConditionalDecrementStock(ctx, productID, amount, expectedMinStock)
}

func (t txInventory) AppendOrder(ctx context.Context, order *models.Order) error {
	return t.orders.Append(ctx, order)
}

func (t txInventory) StockOf(ctx context.Context, productID uint) (int, error) {
	return t.products.StockOf(ctx, productID)
}
