package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/rangershop/app/services"
	"github.com/shashiranjanraj/rangershop/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// List returns every order line belonging to the customer, annotated with
// product data.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	lines, err := c.service.ListOrderLines(r.Context(), chi.URLParam(r, "custID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, lines)
}

// Create places a new order for the customer from the posted line items.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Order []services.OrderItemInput `json:"order" validate:"required"`
	}
	if !decode(w, r, &body) {
		return
	}

	order, err := c.service.PlaceOrder(r.Context(), chi.URLParam(r, "custID"), body.Order)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, order)
}

// Update changes the quantity of one line on an order.
func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"prod_id"  validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,gte=1"`
	}
	if !decode(w, r, &body) {
		return
	}

	order, err := c.service.UpdateLine(r.Context(), chi.URLParam(r, "orderID"), body.ProductID, body.Quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, order)
}

// Delete removes one line from an order, returning its stock.
func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"prod_id" validate:"required"`
	}
	if !decode(w, r, &body) {
		return
	}

	order, err := c.service.DeleteLine(r.Context(), chi.URLParam(r, "orderID"), body.ProductID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, order)
}
