// Package migrations registers the stockroom schema. Import it for its side
// effects before running pkg/migration.
package migrations

import (
	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_users_table", table(&models.User{}, "users"))
	migration.Register("20260101000001_create_categories_table", table(&models.Category{}, "categories"))
	migration.Register("20260101000002_create_suppliers_table", table(&models.Supplier{}, "suppliers"))
	migration.Register("20260101000003_create_products_table", table(&models.Product{}, "products"))
	migration.Register("20260101000004_create_orders_table", table(&models.Order{}, "orders"))
}

// createTable migrates one model up and drops its table down.
type createTable struct {
	model interface{}
	name  string
}

func table(model interface{}, name string) *createTable {
	return &createTable{model: model, name: name}
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.name)
}
