package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	Register("users", seedUsers)
	Register("catalog", seedCatalog)
}

func seedUsers(ctx context.Context, db *gorm.DB) error {
	auth := services.NewAuthService(repositories.NewUserRepository(db))

	accounts := []services.UserInput{
		{
			Name:     "Administrator",
			Email:    config.SeedAdminEmail(),
			Password: config.SeedAdminPassword(),
			Role:     models.RoleAdmin,
		},
		{
			Name:     "Demo Customer",
			Email:    "customer@stockroom.local",
			Password: "customer123",
			Address:  "1 Market Street",
			Role:     models.RoleCustomer,
		},
	}
	for _, in := range accounts {
		if _, err := auth.Register(ctx, in); err != nil && !errors.Is(err, services.ErrDuplicate) {
			return err
		}
	}
	return nil
}

type demoProduct struct {
	name, category, supplier string
	stock                    int
	price                    string
}

var demoCategories = []models.Category{
	{Name: "Hardware", Description: "Tools and fixings"},
	{Name: "Stationery", Description: "Office supplies"},
	{Name: "Electronics", Description: "Cables, chargers and small devices"},
}

var demoSuppliers = []models.Supplier{
	{Name: "Acme Wholesale", Email: "sales@acme.example", Phone: "555-0100"},
	{Name: "Paperworks Ltd", Email: "orders@paperworks.example", Phone: "555-0142"},
}

var demoProducts = []demoProduct{
	{"Widget", "Hardware", "sales@acme.example", 10, "5.00"},
	{"Hammer", "Hardware", "sales@acme.example", 25, "18.50"},
	{"Box of Screws", "Hardware", "sales@acme.example", 4, "3.25"},
	{"Notebook", "Stationery", "orders@paperworks.example", 120, "2.40"},
	{"Fountain Pen", "Stationery", "orders@paperworks.example", 0, "32.00"},
	{"USB-C Cable", "Electronics", "sales@acme.example", 8, "9.99"},
}

// seedCatalog creates the demo categories, suppliers and products, leaving
// any that already exist untouched.
func seedCatalog(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := repositories.NewCategoryRepository(tx)
		suppliers := repositories.NewSupplierRepository(tx)
		products := repositories.NewProductRepository(tx)

		categoryIDs := map[string]uint{}
		for _, c := range demoCategories {
			existing, err := categories.FindByName(ctx, c.Name)
			switch {
			case err == nil:
				categoryIDs[c.Name] = existing.ID
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			c := c
			if err := categories.Create(ctx, &c); err != nil {
				return err
			}
			categoryIDs[c.Name] = c.ID
		}

		supplierIDs := map[string]uint{}
		for _, s := range demoSuppliers {
			existing, err := suppliers.FindByEmail(ctx, s.Email)
			switch {
			case err == nil:
				supplierIDs[s.Email] = existing.ID
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			s := s
			if err := suppliers.Create(ctx, &s); err != nil {
				return err
			}
			supplierIDs[s.Email] = s.ID
		}

		for _, p := range demoProducts {
			_, err := products.FindByName(ctx, p.name)
			switch {
			case err == nil:
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			product := models.Product{
				Name:       p.name,
				Stock:      p.stock,
				Price:      decimal.RequireFromString(p.price),
				CategoryID: categoryIDs[p.category],
				SupplierID: supplierIDs[p.supplier],
			}
			if err := products.Create(ctx, &product); err != nil {
				return err
			}
		}
		return nil
	})
}
