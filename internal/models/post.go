package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Privacy controls who may read a post.
type Privacy string

const (
	// PrivacyPublic posts are visible to everyone.
	PrivacyPublic Privacy = "public"
	// PrivacyPrivate posts are visible only to their author.
	PrivacyPrivate Privacy = "private"
	// PrivacyFollowers posts are visible to the author and their followers.
	PrivacyFollowers Privacy = "followers"
)

// Valid reports whether p is one of the known privacy levels.
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyFollowers:
		return true
	}
	return false
}

// Post is an authored piece of content. LikeCount, CommentCount and
// AuthorUsername are query-time annotations, never stored columns.
type Post struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID string  `gorm:"not null;index" json:"author_id"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	Privacy  Privacy `gorm:"type:text;not null;default:public" json:"privacy"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`

	AuthorUsername string `gorm:"->;-:migration" json:"author_username"`
	LikeCount      int64  `gorm:"->;-:migration" json:"like_count"`
	CommentCount   int64  `gorm:"->;-:migration" json:"comment_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Privacy == "" {
		p.Privacy = PrivacyPublic
	}
	return nil
}

// VisibleTo reports whether viewer may read the post. followsAuthor must
// already reflect whether viewer follows the post's author.
func (p *Post) VisibleTo(viewerID string, followsAuthor bool) bool {
	if p.AuthorID == viewerID {
		return true
	}
	switch p.Privacy {
	case PrivacyPublic:
		return true
	case PrivacyFollowers:
		return followsAuthor
	default:
		return false
	}
}

// Comment belongs to a post. ParentID, when set, points at a top-level
// comment on the same post; replies never nest deeper than one level.
type Comment struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	PostID   string  `gorm:"not null;index" json:"post_id"`
	AuthorID string  `gorm:"not null;index" json:"author_id"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	ParentID *string `gorm:"index" json:"parent_id,omitempty"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`

	AuthorUsername string    `gorm:"->;-:migration" json:"author_username"`
	Replies        []Comment `gorm:"-" json:"replies,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Like is a (user, post) pair; the unique index makes the toggle safe
// under concurrent requests.
type Like struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index;uniqueIndex:idx_like_pair" json:"user_id"`
	PostID string `gorm:"not null;index;uniqueIndex:idx_like_pair" json:"post_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
