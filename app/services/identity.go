package services

import (
	"context"

	"github.com/shashiranjanraj/stockroom/app/models"
)

// Identity is the authenticated caller as established by the session token.
type Identity struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
}

func (i Identity) IsAdmin() bool    { return i.Role == models.RoleAdmin }
func (i Identity) IsCustomer() bool { return i.Role == models.RoleCustomer }

func (i Identity) authenticated() bool {
	return i.UserID != 0 && (i.IsAdmin() || i.IsCustomer())
}

func requireAuthenticated(who Identity) error {
	if !who.authenticated() {
		return &Error{Kind: KindUnauthorized, Message: "authentication required"}
	}
	return nil
}

func requireAdmin(who Identity) error {
	if err := requireAuthenticated(who); err != nil {
		return err
	}
	if !who.IsAdmin() {
		return forbidden("admin role required")
	}
	return nil
}

// Invalidator is notified after writes that change dashboard figures.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

// profileFinder loads the caller's stored profile.
type profileFinder interface {
	FindByID(ctx context.Context, id uint) (models.User, error)
}
