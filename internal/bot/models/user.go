// Package models defines the records the bot persists: allow-list entries,
// outbound envelopes and the chat log.
package models

import "strings"

// AuthorizedUser is one allow-list record. At least one of ID and Username
// is set. Username is always stored normalized (see NormalizeHandle).
type AuthorizedUser struct {
	ID       *int64 `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

// NormalizeHandle strips a leading "@" and lowercases the rest.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// HasID reports whether the record is bound to a numeric identifier.
func (u AuthorizedUser) HasID() bool {
	return u.ID != nil
}

// Matches reports whether the record belongs to the caller. handle must
// already be normalized; an empty handle never matches by name.
func (u AuthorizedUser) Matches(callerID int64, handle string) bool {
	if u.ID != nil && *u.ID == callerID {
		return true
	}
	return handle != "" && u.Username != "" && u.Username == handle
}

// Clone returns a deep copy, so snapshots do not share the ID pointer.
func (u AuthorizedUser) Clone() AuthorizedUser {
	c := AuthorizedUser{Username: u.Username}
	if u.ID != nil {
		id := *u.ID
		c.ID = &id
	}
	return c
}

// Int64Ptr is a small helper for building records in code and tests.
func Int64Ptr(v int64) *int64 {
	return &v
}
