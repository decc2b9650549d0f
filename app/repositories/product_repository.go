package repositories

import (
	"context"

	"github.com/shashiranjanraj/stockroom/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository handles database operations for Product. Stock is only
// ever changed through ConditionalDecrementStock, IncrementStock or a full
// record write validated by the caller.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Category").Preload("Supplier")
}

// All returns every product with its category and supplier, ordered by name.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.withRelations(ctx).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	err := r.withRelations(ctx).First(&product, id).Error
	return product, err
}

// FindByName is an exact, case-sensitive lookup on the unique product name.
func (r *ProductRepository) FindByName(ctx context.Context, name string) (models.Product, error) {
	var product models.Product
	err := r.withRelations(ctx).Where("name = ?", name).First(&product).Error
	return product, err
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}

// ConditionalDecrementStock subtracts amount in a single statement that only
// matches while stock is still at least max(amount, expectedMinStock). When
// no row matches it returns ErrStockConflict and leaves stock untouched.
func (r *ProductRepository) ConditionalDecrementStock(ctx context.Context, id uint, amount, expectedMinStock int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	floor := amount
	if expectedMinStock > floor {
		floor = expectedMinStock
	}

	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, floor).
		Update("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}

// IncrementStock adds amount atomically. Returns gorm.ErrRecordNotFound when
// the product does not exist.
func (r *ProductRepository) IncrementStock(ctx context.Context, id uint, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StockOf reads the current stock of one product.
func (r *ProductRepository) StockOf(ctx context.Context, id uint) (int, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Select("id", "stock").First(&product, id).Error
	return product.Stock, err
}

// StockFigures is the catalog-wide tally used by the dashboard.
type StockFigures struct {
	Products   int64 `json:"products"`
	StockUnits int64 `json:"stockUnits"`
}

// Figures counts products and sums their stock in one read.
func (r *ProductRepository) Figures(ctx context.Context) (StockFigures, error) {
	var f StockFigures
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COUNT(*) AS products, COALESCE(SUM(stock), 0) AS stock_units").
		Scan(&f).Error
	return f, err
}

// OutOfStock lists products with zero stock, ordered by name.
func (r *ProductRepository) OutOfStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.withRelations(ctx).Where("stock = 0").Order("name ASC").Find(&products).Error
	return products, err
}

// LowStock lists products with 0 < stock <= threshold, lowest stock first.
func (r *ProductRepository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.withRelations(ctx).
		Where("stock > 0 AND stock <= ?", threshold).
		Order("stock ASC").Order("name ASC").
		Find(&products).Error
	return products, err
}

// InStock lists products with stock > 0, ordered by name.
func (r *ProductRepository) InStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.withRelations(ctx).Where("stock > 0").Order("name ASC").Find(&products).Error
	return products, err
}
