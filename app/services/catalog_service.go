package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/validate"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description" validate:"nullable,max=2000"`
}

type SupplierInput struct {
	Name    string `json:"name"    validate:"required,max=255"`
	Email   string `json:"email"   validate:"required,email,max=255"`
	Phone   string `json:"phone"   validate:"nullable,max=50"`
	Address string `json:"address" validate:"nullable,max=1000"`
}

type ProductInput struct {
	Name        string          `json:"name"        validate:"required,max=255"`
	Description string          `json:"description" validate:"nullable,max=2000"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	Price       decimal.Decimal `json:"price"       validate:"gte=0"`
	CategoryID  uint            `json:"categoryId"  validate:"required"`
	SupplierID  uint            `json:"supplierId"  validate:"required"`
}

type RestockInput struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

// CatalogService manages categories, suppliers and products. Reads are open
// to any signed-in user; writes need the admin role.
type CatalogService struct {
	categories *repositories.CategoryRepository
	suppliers  *repositories.SupplierRepository
	products   *repositories.ProductRepository
	invalidate Invalidator
}

func NewCatalogService(
	categories *repositories.CategoryRepository,
	suppliers *repositories.SupplierRepository,
	products *repositories.ProductRepository,
	invalidate Invalidator,
) *CatalogService {
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	return &CatalogService{
		categories: categories,
		suppliers:  suppliers,
		products:   products,
		invalidate: invalidate,
	}
}

// ── Categories ───────────────────────────────────────────────────────────────

func (s *CatalogService) ListCategories(ctx context.Context, who Identity) ([]models.Category, error) {
	if err := requireAuthenticated(who); err != nil {
		return nil, err
	}
	categories, err := s.categories.All(ctx)
	return orEmpty(categories), storageError(ctx, "categories", err)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput, who Identity) (models.Category, error) {
	if err := requireAdmin(who); err != nil {
		return models.Category{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.Category{}, validationError(errs)
	}
	if err := s.categoryNameFree(ctx, in.Name, 0); err != nil {
		return models.Category{}, err
	}

	category := models.Category{Name: in.Name, Description: strings.TrimSpace(in.Description)}
	if err := s.categories.Create(ctx, &category); err != nil {
		return models.Category{}, storageError(ctx, "category", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput, who Identity) (models.Category, error) {
	if err := requireAdmin(who); err != nil {
		return models.Category{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.Category{}, validationError(errs)
	}

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return models.Category{}, storageError(ctx, "category", err)
	}
	if err := s.categoryNameFree(ctx, in.Name, id); err != nil {
		return models.Category{}, err
	}

	category.Name = in.Name
	category.Description = strings.TrimSpace(in.Description)
	if err := s.categories.Update(ctx, &category); err != nil {
		return models.Category{}, storageError(ctx, "category", err)
	}
	s.invalidate.Invalidate(ctx)
	return category, nil
}

// DeleteCategory refuses while any product still references the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint, who Identity) error {
	if err := requireAdmin(who); err != nil {
		return err
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return storageError(ctx, "category", err)
	}

	n, err := s.categories.ProductCount(ctx, id)
	if err != nil {
		return storageError(ctx, "category", err)
	}
	if n > 0 {
		return &Error{Kind: KindInUse, Message: "category is still assigned to products"}
	}
	return storageError(ctx, "category", s.categories.Delete(ctx, id))
}

func (s *CatalogService) categoryNameFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.categories.FindByName(ctx, name)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return storageError(ctx, "category", err)
	case existing.ID != selfID:
		return duplicate("category already exists")
	}
	return nil
}

// ── Suppliers ────────────────────────────────────────────────────────────────

func (s *CatalogService) ListSuppliers(ctx context.Context, who Identity) ([]models.Supplier, error) {
	if err := requireAuthenticated(who); err != nil {
		return nil, err
	}
	suppliers, err := s.suppliers.All(ctx)
	return orEmpty(suppliers), storageError(ctx, "suppliers", err)
}

func (s *CatalogService) CreateSupplier(ctx context.Context, in SupplierInput, who Identity) (models.Supplier, error) {
	if err := requireAdmin(who); err != nil {
		return models.Supplier{}, err
	}
	in.Email = models.NormalizeEmail(in.Email)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.Supplier{}, validationError(errs)
	}
	if err := s.supplierEmailFree(ctx, in.Email, 0); err != nil {
		return models.Supplier{}, err
	}

	supplier := models.Supplier{Name: in.Name, Email: in.Email, Phone: strings.TrimSpace(in.Phone), Address: strings.TrimSpace(in.Address)}
	if err := s.suppliers.Create(ctx, &supplier); err != nil {
		return models.Supplier{}, storageError(ctx, "supplier", err)
	}
	return supplier, nil
}

func (s *CatalogService) UpdateSupplier(ctx context.Context, id uint, in SupplierInput, who Identity) (models.Supplier, error) {
	if err := requireAdmin(who); err != nil {
		return models.Supplier{}, err
	}
	in.Email = models.NormalizeEmail(in.Email)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.Supplier{}, validationError(errs)
	}

	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return models.Supplier{}, storageError(ctx, "supplier", err)
	}
	if err := s.supplierEmailFree(ctx, in.Email, id); err != nil {
		return models.Supplier{}, err
	}

	supplier.Name = in.Name
	supplier.Email = in.Email
	supplier.Phone = strings.TrimSpace(in.Phone)
	supplier.Address = strings.TrimSpace(in.Address)
	if err := s.suppliers.Update(ctx, &supplier); err != nil {
		return models.Supplier{}, storageError(ctx, "supplier", err)
	}
	return supplier, nil
}

// DeleteSupplier refuses while any product still references the supplier.
func (s *CatalogService) DeleteSupplier(ctx context.Context, id uint, who Identity) error {
	if err := requireAdmin(who); err != nil {
		return err
	}
	if _, err := s.suppliers.FindByID(ctx, id); err != nil {
		return storageError(ctx, "supplier", err)
	}

	n, err := s.suppliers.ProductCount(ctx, id)
	if err != nil {
		return storageError(ctx, "supplier", err)
	}
	if n > 0 {
		return &Error{Kind: KindInUse, Message: "supplier still provides products"}
	}
	return storageError(ctx, "supplier", s.suppliers.Delete(ctx, id))
}

func (s *CatalogService) supplierEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.suppliers.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return storageError(ctx, "supplier", err)
	case existing.ID != selfID:
		return duplicate("supplier email already exists")
	}
	return nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *CatalogService) ListProducts(ctx context.Context, who Identity) ([]models.Product, error) {
	if err := requireAuthenticated(who); err != nil {
		return nil, err
	}
	products, err := s.products.All(ctx)
	return orEmpty(products), storageError(ctx, "products", err)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint, who Identity) (models.Product, error) {
	if err := requireAuthenticated(who); err != nil {
		return models.Product{}, err
	}
	product, err := s.products.FindByID(ctx, id)
	return product, storageError(ctx, "product", err)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, who Identity) (models.Product, error) {
	if err := requireAdmin(who); err != nil {
		return models.Product{}, err
	}
	if err := s.checkProduct(ctx, &in, 0); err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Stock:       in.Stock,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
	}
	if err := s.products.Create(ctx, &product); err != nil {
		return models.Product{}, storageError(ctx, "product", err)
	}
	s.invalidate.Invalidate(ctx)

	return s.reload(ctx, product.ID)
}

// UpdateProduct replaces every attribute, stock included.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput, who Identity) (models.Product, error) {
	if err := requireAdmin(who); err != nil {
		return models.Product{}, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, storageError(ctx, "product", err)
	}
	if err := s.checkProduct(ctx, &in, id); err != nil {
		return models.Product{}, err
	}

	product.Name = in.Name
	product.Description = strings.TrimSpace(in.Description)
	product.Stock = in.Stock
	product.Price = in.Price
	product.CategoryID = in.CategoryID
	product.SupplierID = in.SupplierID
	product.Category, product.Supplier = nil, nil
	if err := s.products.Update(ctx, &product); err != nil {
		return models.Product{}, storageError(ctx, "product", err)
	}
	s.invalidate.Invalidate(ctx)

	logger.WithCtx(ctx).Info("product updated", "product_id", id, "stock", in.Stock)
	return s.reload(ctx, id)
}

// DeleteProduct removes a product. Past orders keep their snapshots.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint, who Identity) error {
	if err := requireAdmin(who); err != nil {
		return err
	}
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return storageError(ctx, "product", err)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return storageError(ctx, "product", err)
	}
	s.invalidate.Invalidate(ctx)
	return nil
}

// RestockProduct adds units atomically, without touching other attributes.
func (s *CatalogService) RestockProduct(ctx context.Context, id uint, in RestockInput, who Identity) (models.Product, error) {
	if err := requireAdmin(who); err != nil {
		return models.Product{}, err
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.Product{}, validationError(errs)
	}

	if err := s.products.IncrementStock(ctx, id, in.Quantity); err != nil {
		return models.Product{}, storageError(ctx, "product", err)
	}
	s.invalidate.Invalidate(ctx)

	logger.WithCtx(ctx).Info("product restocked", "product_id", id, "quantity", in.Quantity)
	return s.reload(ctx, id)
}

func (s *CatalogService) checkProduct(ctx context.Context, in *ProductInput, selfID uint) error {
	in.Name = strings.TrimSpace(in.Name)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return validationError(errs)
	}

	existing, err := s.products.FindByName(ctx, in.Name)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return storageError(ctx, "product", err)
	case existing.ID != selfID:
		return duplicate("product already exists")
	}

	if _, err := s.categories.FindByID(ctx, in.CategoryID); err != nil {
		return storageError(ctx, "category", err)
	}
	if _, err := s.suppliers.FindByID(ctx, in.SupplierID); err != nil {
		return storageError(ctx, "supplier", err)
	}
	return nil
}

func (s *CatalogService) reload(ctx context.Context, id uint) (models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	return product, storageError(ctx, "product", err)
}
