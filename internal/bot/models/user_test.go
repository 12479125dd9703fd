package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"@Carol", "carol"},
		{"carol", "carol"},
		{"CAROL", "carol"},
		{"  @Dave ", "dave"},
		{"@", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHandle(tt.in), "input %q", tt.in)
	}
}

func TestAuthorizedUser_Matches(t *testing.T) {
	byID := AuthorizedUser{ID: Int64Ptr(42)}
	byName := AuthorizedUser{Username: "alice"}
	both := AuthorizedUser{ID: Int64Ptr(7), Username: "bob"}

	assert.True(t, byID.Matches(42, ""))
	assert.False(t, byID.Matches(43, "alice"))

	assert.True(t, byName.Matches(1, "alice"))
	assert.False(t, byName.Matches(1, ""))
	assert.False(t, byName.Matches(0, "alicia"))

	assert.True(t, both.Matches(7, "someone"))
	assert.True(t, both.Matches(8, "bob"))
}

func TestAuthorizedUser_Clone(t *testing.T) {
	u := AuthorizedUser{ID: Int64Ptr(1), Username: "x"}
	c := u.Clone()
	*c.ID = 2

	assert.Equal(t, int64(1), *u.ID)
	assert.True(t, c.HasID())
	assert.False(t, AuthorizedUser{Username: "y"}.Clone().HasID())
}
