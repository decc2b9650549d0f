package controllers

import (
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Login exchanges email and password for a session token.
func (a *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.Decode(&in) {
		return
	}
	session, err := a.service.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(session)
}

// Me returns the caller's profile.
func (a *AuthController) Me(c *ctx.Context) {
	user, err := a.service.Profile(c.Context(), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

func (a *AuthController) ChangePassword(c *ctx.Context) {
	var in services.ChangePasswordInput
	if !c.Decode(&in) {
		return
	}
	if err := a.service.ChangePassword(c.Context(), in, identity(c)); err != nil {
		fail(c, err)
		return
	}
	c.Message("Password updated")
}
