package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/stockroom/app/models"
	"gorm.io/gorm"
)

// OrderFilter narrows a ledger read. Zero values mean "no constraint".
type OrderFilter struct {
	Search     string // case-insensitive substring of the product name
	Category   string // exact category snapshot
	From, To   *time.Time
	CustomerID *uint
	Limit      int
}

// ProductSales is the quantity sold for one product name.
type ProductSales struct {
	ProductName string `json:"productName"`
	Category    string `json:"category"`
	Units       int64  `json:"units"`
}

// OrderRepository is the append-only order ledger. It exposes no update or
// delete; the model hooks reject them as well.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Append records a new order.
func (r *OrderRepository) Append(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// List returns matching orders, newest first.
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(product_name) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.From != nil {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date <= ?", f.To.UTC())
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var orders []models.Order
	err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error
	return orders, err
}

// BestSeller returns the product name with the highest total quantity across
// all orders, ties broken by name ascending. ok is false on an empty ledger.
func (r *OrderRepository) BestSeller(ctx context.Context) (ProductSales, bool, error) {
	var rows []ProductSales
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("product_name, MAX(category) AS category, SUM(quantity) AS units").
		Group("product_name").
		Order("units DESC").Order("product_name ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return ProductSales{}, false, err
	}
	return rows[0], true, nil
}

// escapeLike escapes LIKE metacharacters with '!' so user input only
// matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![").Replace(s)
}
