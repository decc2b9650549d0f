package models

import "time"

// Model carries the primary key and timestamps shared by catalog and user
// records. There is no soft delete: a deleted row must release its unique
// name and stop counting as a reference.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// All returns every model in dependency order, for AutoMigrate and tests.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Supplier{},
		&Product{},
		&Order{},
	}
}
