package util

import (
	"errors"
	"strings"

	"github.com/connectly/backend/internal/models"
)

const (
	maxPostContentLen    = 10000
	maxCommentContentLen = 2000
)

// ValidatePostContent checks post body constraints
func ValidatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("content is required")
	}
	if len(content) > maxPostContentLen {
		return errors.New("content too long (max 10000 characters)")
	}
	return nil
}

// ValidateCommentContent checks comment body constraints
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("content is required")
	}
	if len(content) > maxCommentContentLen {
		return errors.New("content too long (max 2000 characters)")
	}
	return nil
}

// ValidatePrivacy checks the privacy value against the closed set.
// Empty string is allowed and defaults to public downstream.
func ValidatePrivacy(p models.Privacy) error {
	if p == "" {
		return nil
	}
	if !p.Valid() {
		return errors.New("privacy must be one of: public, private, followers")
	}
	return nil
}
