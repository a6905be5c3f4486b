package server

import (
	"net/http"

	"github.com/example/candleshop/pkg/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.products.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to fetch products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := s.products.GetByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Price         float64  `json:"price" binding:"required,gte=0"`
	OriginalPrice float64  `json:"original_price" binding:"gte=0"`
	Category      string   `json:"category" binding:"required"`
	Collection    string   `json:"collection" binding:"required"`
	Images        []string `json:"images"`
	Stock         int      `json:"stock" binding:"gte=0"`
	IsNew         bool     `json:"is_new"`
	IsSale        bool     `json:"is_sale"`
	Scent         string   `json:"scent"`
	BurnTime      string   `json:"burn_time"`
	Size          string   `json:"size"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		Collection:    req.Collection,
		Images:        req.Images,
		Stock:         req.Stock,
		IsNew:         req.IsNew,
		IsSale:        req.IsSale,
		Scent:         req.Scent,
		BurnTime:      req.BurnTime,
		Size:          req.Size,
	}
	if err := s.products.Insert(c.Request.Context(), product); err != nil {
		s.fail(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var updates bson.M
	if err := c.BindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	// Identity and timestamps are not client-writable.
	delete(updates, "_id")
	delete(updates, "created_at")
	delete(updates, "updated_at")

	product, err := s.products.Update(c.Request.Context(), id, updates)
	if err != nil {
		s.fail(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if err := s.products.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err, "Failed to delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
}
