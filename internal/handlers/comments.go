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

const commentAnnotations = `comments.*,
	(SELECT users.username FROM users WHERE users.id = comments.author_id) AS author_username`

// ListComments returns a post's top-level comments, paginated, with
// replies embedded one level deep.
func (h *Handlers) ListComments(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	post, ok := h.visiblePost(c, userID, postID)
	if !ok {
		return
	}

	params := feed.ParsePageParams(c.Request.URL.Query())

	topLevel := func() *gorm.DB {
		return h.db.Model(&models.Comment{}).
			Where("comments.post_id = ? AND comments.parent_id IS NULL", post.ID)
	}

	var count int64
	if err := topLevel().Count(&count).Error; err != nil {
		util.RespondInternalError(c, err)
		return
	}
	params.Page = feed.ClampPage(params.Page, feed.TotalPages(count, params.Size))

	var comments []models.Comment
	err := topLevel().
		Select(commentAnnotations).
		Order("comments.created_at ASC, comments.id ASC").
		Limit(params.Size).
		Offset((params.Page - 1) * params.Size).
		Find(&comments).Error
	if err != nil {
		util.RespondInternalError(c, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	if err := h.attachReplies(comments); err != nil {
		util.RespondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed.BuildEnvelope(c.Request.URL, params, count, comments))
}

// attachReplies loads replies for a page of top-level comments in one
// query and nests them under their parents.
func (h *Handlers) attachReplies(parents []models.Comment) error {
	if len(parents) == 0 {
		return nil
	}

	parentIDs := make([]string, len(parents))
	index := make(map[string]int, len(parents))
	for i, p := range parents {
		parentIDs[i] = p.ID
		index[p.ID] = i
	}

	var replies []models.Comment
	err := h.db.Model(&models.Comment{}).
		Select(commentAnnotations).
		Where("comments.parent_id IN ?", parentIDs).
		Order("comments.created_at ASC, comments.id ASC").
		Find(&replies).Error
	if err != nil {
		return err
	}

	for _, r := range replies {
		if i, ok := index[*r.ParentID]; ok {
			parents[i].Replies = append(parents[i].Replies, r)
		}
	}
	return nil
}

// CreateComment adds a comment, optionally as a one-level reply.
func (h *Handlers) CreateComment(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	post, ok := h.visiblePost(c, userID, postID)
	if !ok {
		return
	}

	var req struct {
		Content  string  `json:"content"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := util.ValidateCommentContent(req.Content); err != nil {
		util.RespondValidationError(c, "content", err.Error())
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		err := h.db.Where("id = ?", *req.ParentID).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondBadRequest(c, "parent comment not found")
			return
		} else if err != nil {
			util.RespondInternalError(c, err)
			return
		}
		if parent.PostID != post.ID {
			util.RespondBadRequest(c, "parent comment belongs to a different post")
			return
		}
		if parent.ParentID != nil {
			util.RespondBadRequest(c, "replies cannot be nested more than one level")
			return
		}
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		util.RespondInternalError(c, err)
		return
	}

	h.feed.InvalidateEngagement(c.Request.Context(), userID, post.AuthorID)

	c.JSON(http.StatusCreated, comment)
}

// visiblePost loads a post and enforces read visibility, writing the
// error response itself when the post cannot be served.
func (h *Handlers) visiblePost(c *gin.Context, userID, postID string) (*models.Post, bool) {
	var post models.Post
	err := h.db.Where("id = ?", postID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "post")
		return nil, false
	} else if err != nil {
		util.RespondInternalError(c, err)
		return nil, false
	}

	followsAuthor := false
	if post.AuthorID != userID {
		followsAuthor, err = followsIn(h.db, userID, post.AuthorID)
		if err != nil {
			util.RespondInternalError(c, err)
			return nil, false
		}
	}
	if !post.VisibleTo(userID, followsAuthor) {
		util.RespondNotFound(c, "post")
		return nil, false
	}
	return &post, true
}
