package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/orders"
)

type orderLine struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=10000"`
}

type orderRequest struct {
	Items []orderLine `json:"items" binding:"required,min=1,dive"`
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=pending paid shipped completed canceled"`
}

func (e *Env) PlaceOrder(c *gin.Context) {
	var req orderRequest
	if !bind(c, &req) {
		return
	}
	lines := make([]orders.Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, orders.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := e.Orders.Place(c.Request.Context(), principal(c), lines)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, order, "Order placed")
}

func (e *Env) MyOrders(c *gin.Context) {
	list, err := e.Orders.ListForBuyer(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: list}, "")
}

func (e *Env) SellerOrders(c *gin.Context) {
	list, err := e.Orders.ListForSeller(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: list}, "")
}

func (e *Env) UpdateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if !bind(c, &req) {
		return
	}
	order, err := e.Orders.UpdateStatus(c.Request.Context(), principal(c), c.Param("id"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, order, "Order updated")
}
