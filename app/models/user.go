package models

// Roles recognised by the authorization layer.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is an account that can sign in. Customers place orders; admins
// manage the catalog.
type User struct {
	Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone    string `gorm:"size:50" json:"phone"`
	Address  string `gorm:"type:text" json:"address"`
	Role     string `gorm:"size:20;not null;default:customer" json:"role"`
	Password string `gorm:"size:255;not null" json:"-"` // hashed, never serialised
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
