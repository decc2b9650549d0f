package models

import "github.com/shopspring/decimal"

// Product is a sellable item. Stock never goes below zero; the check
// constraint backs up the conditional decrement in the repository.
type Product struct {
	Model
	Name        string          `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CategoryID  uint            `gorm:"not null;index" json:"categoryId"`
	Category    *Category       `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	SupplierID  uint            `gorm:"not null;index" json:"supplierId"`
	Supplier    *Supplier       `gorm:"constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// CategoryName returns the preloaded category name, or "" when not loaded.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}
