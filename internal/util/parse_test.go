package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 42, ParseInt("42", 0))
	assert.Equal(t, -3, ParseInt("-3", 0))
	assert.Equal(t, 7, ParseInt("abc", 7))
	assert.Equal(t, 7, ParseInt("1.5", 7))
	assert.Equal(t, 7, ParseInt("", 7))
}
