package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role controls what a user may do beyond acting on their own content.
// The set is closed: anything outside it is rejected at validation time.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
	RoleGuest     Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser, RoleGuest:
		return true
	}
	return false
}

// CanModerate reports whether the role may delete other users' content.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleModerator
}

// CanListUsers reports whether the role may enumerate all accounts.
func (r Role) CanListUsers() bool {
	return r == RoleAdmin
}

// User represents an account. PasswordHash never serializes.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `json:"name"`
	PasswordHash string `gorm:"type:text;not null" json:"-"`
	Role         Role   `gorm:"type:text;not null;default:user" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a uuid primary key so the same model works on
// postgres and the sqlite test driver.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// Follow is an edge from Follower to Followed. The pair is unique and a
// user cannot follow themselves (enforced above the store).
type Follow struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID string `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowedID string `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"followed_id"`

	Follower User `gorm:"foreignKey:FollowerID" json:"-"`
	Followed User `gorm:"foreignKey:FollowedID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
