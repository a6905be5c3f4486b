package server

import (
	"net/http"

	"github.com/example/candleshop/pkg/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		s.fail(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user": gin.H{
			"id":    user.ID.Hex(),
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	token, user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err, "Login failed")
		return
	}

	maxAge := int(s.config.Session.TTL.Seconds())
	c.SetCookie(s.config.Session.CookieName, token, maxAge, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    user.ID.Hex(),
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

func (s *Server) logout(c *gin.Context) {
	token, _ := c.Cookie(s.config.Session.CookieName)
	if token != "" {
		if err := s.auth.Logout(c.Request.Context(), token); err != nil {
			s.logger.Warn("Failed to delete session", zap.Error(err))
		}
	}
	c.SetCookie(s.config.Session.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) me(c *gin.Context) {
	session := currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"id":    session.UserID,
		"email": session.Email,
		"name":  session.Name,
		"role":  session.Role,
	})
}

func (s *Server) getProfile(c *gin.Context) {
	user, err := s.auth.User(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err, "Failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	Name      string           `json:"name" binding:"required"`
	Phone     string           `json:"phone"`
	Addresses []models.Address `json:"addresses"`
}

func (s *Server) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := s.auth.UpdateProfile(c.Request.Context(), currentUserID(c), req.Name, req.Phone, req.Addresses)
	if err != nil {
		s.fail(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
