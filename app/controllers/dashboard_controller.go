package controllers

import (
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
)

type DashboardController struct {
	service *services.DashboardService
}

func NewDashboardController(service *services.DashboardService) *DashboardController {
	return &DashboardController{service: service}
}

// Show returns the summary for ?scope=admin|customer, defaulting to the
// caller's role.
func (d *DashboardController) Show(c *ctx.Context) {
	summary, err := d.service.Summary(c.Context(), c.Query("scope"), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(summary)
}
