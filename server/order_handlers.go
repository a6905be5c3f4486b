package server

import (
	"net/http"

	"github.com/example/candleshop/pkg/models"
	"github.com/example/candleshop/pkg/service"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createOrderRequest struct {
	Items           []models.OrderItem     `json:"items" binding:"required"`
	CustomerInfo    models.CustomerInfo    `json:"customer_info"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Subtotal        float64                `json:"subtotal"`
	Tax             float64                `json:"tax"`
	Shipping        float64                `json:"shipping"`
	Total           float64                `json:"total"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := s.orders.CreateOrder(c.Request.Context(), currentUserID(c), &service.CreateOrderInput{
		Items:           req.Items,
		CustomerInfo:    req.CustomerInfo,
		ShippingAddress: req.ShippingAddress,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		Shipping:        req.Shipping,
		Total:           req.Total,
	})
	if err != nil {
		s.fail(c, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
	})
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.orders.ListUserOrders(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err, "Failed to fetch orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := s.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Order not found")
		return
	}

	// Customers may only read their own orders.
	session := currentSession(c)
	if order.UserID != currentUserID(c) && session.Role != string(models.RoleAdmin) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	timeline, err := s.orders.OrderTimeline(c.Request.Context(), order.ID)
	if err != nil {
		s.fail(c, err, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":    order,
		"tracking": timeline,
	})
}
