package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type paymentIntentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

func (s *Server) createPaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order id"})
		return
	}

	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	intent, err := s.payments.CreateIntent(c.Request.Context(), orderID, currentUserID(c))
	if err != nil {
		s.fail(c, err, "Failed to create payment order")
		return
	}
	c.JSON(http.StatusOK, intent)
}

type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

func (s *Server) verifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing verification fields"})
		return
	}

	order, err := s.payments.Verify(c.Request.Context(), req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		s.fail(c, err, "Failed to verify payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment verified successfully",
		"order":   order,
	})
}
