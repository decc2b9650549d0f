package models

import (
	"strings"

	"gorm.io/gorm"
)

// Supplier provides products. Email is unique and stored lowercased.
type Supplier struct {
	Model
	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone   string `gorm:"size:50" json:"phone"`
	Address string `gorm:"type:text" json:"address"`
}

// BeforeSave normalises the email so uniqueness is case-insensitive.
func (s *Supplier) BeforeSave(*gorm.DB) error {
	s.Email = NormalizeEmail(s.Email)
	s.Name = strings.TrimSpace(s.Name)
	return nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
