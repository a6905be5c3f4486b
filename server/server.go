package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/example/candleshop/pkg/auth"
	"github.com/example/candleshop/pkg/config"
	"github.com/example/candleshop/pkg/models"
	"github.com/example/candleshop/pkg/payment"
	"github.com/example/candleshop/pkg/repository"
	"github.com/example/candleshop/pkg/service"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductStore is satisfied by *repository.ProductRepository.
type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	auth     *auth.Service
	orders   *service.OrderService
	payments *service.PaymentService
	admin    *service.AdminService
	products ProductStore
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authSvc *auth.Service,
	orders *service.OrderService,
	payments *service.PaymentService,
	admin *service.AdminService,
	products ProductStore,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		auth:     authSvc,
		orders:   orders,
		payments: payments,
		admin:    admin,
		products: products,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", s.register)
			authRoutes.POST("/login", s.login)
			authRoutes.POST("/logout", s.requireAuth(), s.logout)
			authRoutes.GET("/me", s.requireAuth(), s.me)
		}

		profile := v1.Group("/profile", s.requireAuth())
		{
			profile.GET("", s.getProfile)
			profile.PUT("", s.updateProfile)
		}

		products := v1.Group("/products")
		{
			products.GET("", s.listProducts)
			products.GET("/:id", s.getProduct)
			products.POST("", s.requireAuth(), s.requireAdmin(), s.createProduct)
			products.PATCH("/:id", s.requireAuth(), s.requireAdmin(), s.updateProduct)
			products.DELETE("/:id", s.requireAuth(), s.requireAdmin(), s.deleteProduct)
		}

		orders := v1.Group("/orders", s.requireAuth())
		{
			orders.POST("", s.createOrder)
			orders.GET("", s.listOrders)
			orders.GET("/:id", s.getOrder)
		}

		payments := v1.Group("/payments", s.requireAuth())
		{
			payments.POST("/intent", s.createPaymentIntent)
			payments.POST("/verify", s.verifyPayment)
		}

		admin := v1.Group("/admin", s.requireAuth(), s.requireAdmin())
		{
			admin.GET("/orders", s.adminListOrders)
			admin.GET("/orders/export", s.adminExportOrders)
			admin.GET("/orders/:id", s.adminGetOrder)
			admin.PATCH("/orders/:id", s.adminUpdateOrderStatus)
			admin.GET("/stats", s.adminStats)
			admin.GET("/sales", s.adminSales)
			admin.GET("/top-products", s.adminTopProducts)
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Storefront API starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the underlying engine for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// fail maps a service error onto an HTTP status with a generic
// client-facing message. The detailed cause stays in the server log.
func (s *Server) fail(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, auth.ErrMissingFields):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrSignatureMismatch):
		status = http.StatusBadRequest
		message = "Payment verification failed"
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password"
	case errors.Is(err, repository.ErrEmailTaken):
		status = http.StatusBadRequest
		message = "User already exists"
	case errors.Is(err, payment.ErrGatewayTimeout):
		status = http.StatusBadGateway
		message = "Payment gateway is not responding, please retry"
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrPaymentNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		s.logger.Warn("Request rejected",
			zap.String("path", c.FullPath()),
			zap.Int("status", status), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
