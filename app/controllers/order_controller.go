package controllers

import (
	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/pkg/ctx"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Index handles GET /orders?limit=&status=.
func (c *OrderController) Index(cx *ctx.Context) {
	orders, err := c.service.List(cx.Context(), cx.MustPrincipal(), services.ListOrdersInput{
		Limit:  cx.Query("limit"),
		Status: cx.Query("status"),
	})
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Orders retrieved", response.Payload{"orders": orders})
}

func (c *OrderController) Show(cx *ctx.Context) {
	id, ok := cx.ParamID("id")
	if !ok {
		return
	}
	order, err := c.service.Get(cx.Context(), cx.MustPrincipal(), id)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Order retrieved", orderPayload(order))
}

func (c *OrderController) Store(cx *ctx.Context) {
	var in services.CreateOrderInput
	if !cx.DecodeJSON(&in) {
		return
	}
	placed, err := c.service.Create(cx.Context(), cx.MustPrincipal(), in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Created("Order placed successfully", response.Payload{
		"order_id":  placed.OrderID,
		"quantity":  placed.Quantity,
		"recipe_id": placed.RecipeID,
	})
}

func (c *OrderController) Update(cx *ctx.Context) {
	id, ok := cx.ParamID("id")
	if !ok {
		return
	}
	var in services.UpdateOrderInput
	if !cx.DecodeJSON(&in) {
		return
	}
	updated, err := c.service.Update(cx.Context(), cx.MustPrincipal(), id, in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Order updated", response.Payload{
		"order_id": updated.OrderID,
		"quantity": updated.Quantity,
		"status":   updated.Status,
	})
}

func (c *OrderController) Destroy(cx *ctx.Context) {
	id, ok := cx.ParamID("id")
	if !ok {
		return
	}
	if err := c.service.Delete(cx.Context(), cx.MustPrincipal(), id); err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("Order deleted", response.Payload{"order_id": id})
}

// orderPayload spreads a single order into the envelope.
func orderPayload(o *services.OrderView) response.Payload {
	return response.Payload{
		"id":          o.ID,
		"recipe_id":   o.RecipeID,
		"recipe_name": o.RecipeName,
		"quantity":    o.Quantity,
		"unit_price":  o.UnitPrice,
		"status":      o.Status,
		"ordered_at":  o.OrderedAt,
		"user_id":     o.UserID,
	}
}
