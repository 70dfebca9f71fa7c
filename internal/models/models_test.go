package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleAdmin.CanModerate())
	assert.True(t, RoleModerator.CanModerate())
	assert.False(t, RoleUser.CanModerate())
	assert.False(t, RoleGuest.CanModerate())

	assert.True(t, RoleAdmin.CanListUsers())
	assert.False(t, RoleModerator.CanListUsers())

	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("superuser").Valid())
}

func TestPrivacyValid(t *testing.T) {
	assert.True(t, PrivacyPublic.Valid())
	assert.True(t, PrivacyPrivate.Valid())
	assert.True(t, PrivacyFollowers.Valid())
	assert.False(t, Privacy("friends").Valid())
	assert.False(t, Privacy("").Valid())
}

func TestPostVisibleTo(t *testing.T) {
	post := Post{AuthorID: "author", Privacy: PrivacyPrivate}
	assert.True(t, post.VisibleTo("author", false))
	assert.False(t, post.VisibleTo("other", true))

	post.Privacy = PrivacyPublic
	assert.True(t, post.VisibleTo("other", false))

	post.Privacy = PrivacyFollowers
	assert.True(t, post.VisibleTo("other", true))
	assert.False(t, post.VisibleTo("other", false))
}
