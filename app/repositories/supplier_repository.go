package repositories

import (
	"context"

	"github.com/shashiranjanraj/stockroom/app/models"
	"gorm.io/gorm"
)

// SupplierRepository handles database operations for Supplier.
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) All(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *SupplierRepository) FindByID(ctx context.Context, id uint) (models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).First(&supplier, id).Error
	return supplier, err
}

// FindByEmail looks a supplier up by its normalised email.
func (r *SupplierRepository) FindByEmail(ctx context.Context, email string) (models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&supplier).Error
	return supplier, err
}

func (r *SupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *SupplierRepository) Update(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *SupplierRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Supplier{}, id).Error
}

// ProductCount returns how many products reference the supplier.
func (r *SupplierRepository) ProductCount(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("supplier_id = ?", id).Count(&n).Error
	return n, err
}
