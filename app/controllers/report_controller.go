package controllers

import (
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
)

type ReportController struct {
	service *services.ReportService
}

func NewReportController(service *services.ReportService) *ReportController {
	return &ReportController{service: service}
}

// ExportOrders writes the filtered ledger as CSV. The body is optional.
func (rc *ReportController) ExportOrders(c *ctx.Context) {
	var q services.OrderQuery
	if c.R.ContentLength != 0 && !c.Decode(&q) {
		return
	}
	q.CustomerID = nil

	export, err := rc.service.ExportOrders(c.Context(), q, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(export)
}

func (rc *ReportController) Index(c *ctx.Context) {
	files, err := rc.service.ListExports(c.Context(), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(files)
}
