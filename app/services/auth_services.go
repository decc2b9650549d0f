package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/pkg/auth"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/validate"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserInput struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Phone    string `json:"phone"    validate:"nullable,max=50"`
	Address  string `json:"address"  validate:"nullable,max=1000"`
	Role     string `json:"role"     validate:"nullable,in=admin|customer"`
	Password string `json:"password" validate:"required,min=6"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

// Session is a signed-in user and their bearer token.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// UserPage is one page of the user list.
type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// AuthService is the identity provider: credential checks, token issue and
// account administration.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Login verifies email and password and returns a session token. Unknown
// emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return Session{}, validationError(errs)
	}

	invalid := &Error{Kind: KindUnauthorized, Message: "invalid credentials"}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, invalid
	}
	if err != nil {
		return Session{}, storageError(ctx, "user", err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		logger.WithCtx(ctx).Warn("failed login", "user_id", user.ID)
		return Session{}, invalid
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to the caller's identity.
func (s *AuthService) Authenticate(token string) (Identity, error) {
	claims, err := auth.ValidateToken(token)
	if err != nil {
		return Identity{}, &Error{Kind: KindUnauthorized, Message: "invalid or expired token", Err: err}
	}
	return Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// Profile returns the stored account of the caller.
func (s *AuthService) Profile(ctx context.Context, who Identity) (models.User, error) {
	if err := requireAuthenticated(who); err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindByID(ctx, who.UserID)
	return user, storageError(ctx, "user", err)
}

func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput, who Identity) error {
	if err := requireAuthenticated(who); err != nil {
		return err
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return validationError(errs)
	}

	user, err := s.users.FindByID(ctx, who.UserID)
	if err != nil {
		return storageError(ctx, "user", err)
	}
	if !auth.CheckPassword(user.Password, in.CurrentPassword) {
		return validationError(map[string]string{"currentPassword": "The current password is incorrect."})
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	return storageError(ctx, "user", s.users.Update(ctx, &user))
}

// CreateUser registers an account. Only admins may create accounts.
func (s *AuthService) CreateUser(ctx context.Context, in UserInput, who Identity) (models.User, error) {
	if err := requireAdmin(who); err != nil {
		return models.User{}, err
	}
	return s.Register(ctx, in)
}

// Register creates an account without an authorization check. Used by the
// seeder and the CLI.
func (s *AuthService) Register(ctx context.Context, in UserInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.User{}, validationError(errs)
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return models.User{}, duplicate("email already registered")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return models.User{}, storageError(ctx, "user", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Role:     in.Role,
		Password: hash,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, storageError(ctx, "user", err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, page, limit int, who Identity) (UserPage, error) {
	if err := requireAdmin(who); err != nil {
		return UserPage{}, err
	}
	users, total, err := s.users.All(ctx, page, limit)
	if err != nil {
		return UserPage{}, storageError(ctx, "users", err)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return UserPage{Users: orEmpty(users), Total: total, Page: page, Limit: limit}, nil
}

// DeleteUser removes an account. Admins cannot delete themselves. Orders the
// user placed keep their customer snapshot.
func (s *AuthService) DeleteUser(ctx context.Context, id uint, who Identity) error {
	if err := requireAdmin(who); err != nil {
		return err
	}
	if id == who.UserID {
		return &Error{Kind: KindConflict, Message: "cannot delete your own account"}
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return storageError(ctx, "user", err)
	}
	return storageError(ctx, "user", s.users.Delete(ctx, id))
}
