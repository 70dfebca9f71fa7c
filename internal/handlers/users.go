package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/connectly/backend/internal/feed"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/util"
)

// GetMe returns the authenticated user's own account.
func (h *Handlers) GetMe(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	err := h.db.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	} else if err != nil {
		util.RespondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers enumerates accounts; the route is gated on the admin role.
func (h *Handlers) ListUsers(c *gin.Context) {
	params := feed.ParsePageParams(c.Request.URL.Query())

	var count int64
	if err := h.db.Model(&models.User{}).Count(&count).Error; err != nil {
		util.RespondInternalError(c, err)
		return
	}
	params.Page = feed.ClampPage(params.Page, feed.TotalPages(count, params.Size))

	var users []models.User
	err := h.db.Model(&models.User{}).
		Order("created_at ASC").
		Limit(params.Size).
		Offset((params.Page - 1) * params.Size).
		Find(&users).Error
	if err != nil {
		util.RespondInternalError(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, feed.BuildEnvelope(c.Request.URL, params, count, users))
}
