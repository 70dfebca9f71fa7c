package handlers

import (
	"gorm.io/gorm"

	"github.com/connectly/backend/internal/auth"
	"github.com/connectly/backend/internal/feed"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	db   *gorm.DB
	feed *feed.Service
	auth *auth.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, feedSvc *feed.Service, authSvc *auth.Service) *Handlers {
	return &Handlers{
		db:   db,
		feed: feedSvc,
		auth: authSvc,
	}
}
