package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connectly/backend/internal/feed"
	"github.com/connectly/backend/internal/util"
)

// GetFeed serves the global feed: public posts plus the requester's own.
func (h *Handlers) GetFeed(c *gin.Context) {
	h.servePage(c, feed.KindGlobal)
}

// GetNewsfeed serves the personalized feed of followed authors.
func (h *Handlers) GetNewsfeed(c *gin.Context) {
	h.servePage(c, feed.KindNewsfeed)
}

// servePage writes the page bytes directly so cached and fresh
// responses are byte-identical.
func (h *Handlers) servePage(c *gin.Context, kind feed.Kind) {
	userID := c.GetString("user_id")

	payload, err := h.feed.Page(c.Request.Context(), kind, userID, c.Request.URL)
	if err != nil {
		util.RespondInternalError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}
