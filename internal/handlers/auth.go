package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connectly/backend/internal/auth"
	"github.com/connectly/backend/internal/util"
)

// Register creates a new account and returns a token
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.auth.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email_already_registered"})
		case errors.Is(err, auth.ErrUsernameExists):
			c.JSON(http.StatusConflict, gin.H{"error": "username_already_taken"})
		default:
			util.RespondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a token
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		util.RespondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
