package controllers

import (
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
)

type OrderController struct {
	service *services.FulfillmentService
}

func NewOrderController(service *services.FulfillmentService) *OrderController {
	return &OrderController{service: service}
}

// Store places an order. 201 carries the order and the stock left.
func (o *OrderController) Store(c *ctx.Context) {
	var in services.PlaceOrderInput
	if !c.Decode(&in) {
		return
	}
	placement, err := o.service.PlaceOrder(c.Context(), in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(placement)
}

// Index lists orders filtered by ?search=, ?category= and ?date=.
// Customers only ever see their own.
func (o *OrderController) Index(c *ctx.Context) {
	q := services.OrderQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Date:     c.Query("date"),
	}
	orders, err := o.service.ListOrders(c.Context(), q, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}
