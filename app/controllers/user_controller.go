package controllers

import (
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
)

type UserController struct {
	service *services.AuthService
}

func NewUserController(service *services.AuthService) *UserController {
	return &UserController{service: service}
}

// Index lists accounts, paginated by ?page= and ?limit=.
func (u *UserController) Index(c *ctx.Context) {
	page, err := u.service.ListUsers(c.Context(), c.QueryInt("page", 1), c.QueryInt("limit", 20), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(page)
}

func (u *UserController) Store(c *ctx.Context) {
	var in services.UserInput
	if !c.Decode(&in) {
		return
	}
	user, err := u.service.CreateUser(c.Context(), in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(user)
}

func (u *UserController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := u.service.DeleteUser(c.Context(), id, identity(c)); err != nil {
		fail(c, err)
		return
	}
	c.Message("User deleted")
}
