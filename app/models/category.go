package models

// Category groups products. Names are unique.
type Category struct {
	Model
	Name        string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}
