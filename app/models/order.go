package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrOrderImmutable is returned by any attempt to update or delete an order.
var ErrOrderImmutable = errors.New("orders are append-only")

// Order is a ledger entry. Product name, category and unit price are
// snapshots taken at placement; ProductID is a trace reference only and is
// not enforced, so a later product delete leaves history intact.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Reference       string          `gorm:"size:36;not null;uniqueIndex" json:"reference"`
	CustomerID      *uint           `gorm:"index" json:"customerId,omitempty"`
	CustomerName    string          `gorm:"size:255" json:"customerName"`
	CustomerAddress string          `gorm:"type:text" json:"customerAddress"`
	ProductID       *uint           `gorm:"index" json:"productId,omitempty"`
	ProductName     string          `gorm:"size:255;not null;index" json:"productName"`
	Category        string          `gorm:"size:255;not null;index" json:"category"`
	Quantity        int             `gorm:"not null;check:chk_orders_quantity,quantity >= 1" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"totalPrice"`
	Date            time.Time       `gorm:"not null;index" json:"date"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
}

// BeforeUpdate rejects mutation of a committed order.
func (o *Order) BeforeUpdate(*gorm.DB) error {
	return ErrOrderImmutable
}

// BeforeDelete rejects removal of a committed order.
func (o *Order) BeforeDelete(*gorm.DB) error {
	return ErrOrderImmutable
}

// PlacedOn returns the business date of the order, falling back to the
// creation time for rows written without one.
func (o Order) PlacedOn() time.Time {
	if o.Date.IsZero() {
		return o.CreatedAt
	}
	return o.Date
}
