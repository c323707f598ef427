package types

import "github.com/google/uuid"

// ResourceID is a UUID-based identifier for a stored resource
type ResourceID string

// NewResourceID generates a new UUID v4 ResourceID
func NewResourceID() ResourceID {
	return ResourceID(uuid.New().String())
}

// String returns the string representation of the resource ID
func (x ResourceID) String() string {
	return string(x)
}

// UserID identifies a chat transport user (e.g. a Slack user ID)
type UserID string

// String returns the string representation of the user ID
func (x UserID) String() string {
	return string(x)
}
