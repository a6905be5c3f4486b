package server

import (
	"net/http"
	"strconv"

	"github.com/example/candleshop/pkg/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Server) adminListOrders(c *gin.Context) {
	orders, err := s.orders.ListAllOrders(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to fetch orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) adminGetOrder(c *gin.Context) {
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

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) adminUpdateOrderStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing status"})
		return
	}

	order, err := s.orders.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status), currentUserID(c))
	if err != nil {
		s.fail(c, err, "Failed to update order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

func (s *Server) adminStats(c *gin.Context) {
	stats, err := s.admin.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) adminSales(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
			return
		}
		days = parsed
	}

	sales, err := s.admin.Sales(c.Request.Context(), days)
	if err != nil {
		s.fail(c, err, "Failed to compute sales data")
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (s *Server) adminTopProducts(c *gin.Context) {
	limit := 5
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	products, err := s.admin.TopProducts(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err, "Failed to compute top products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) adminExportOrders(c *gin.Context) {
	csv, err := s.admin.ExportCSV(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to export orders")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}
