package slack

import "context"

// Service provides the Slack API surface the bot needs
type Service interface {
	// BotUserID returns the user ID of the bot itself, used to drop echo
	// events. The result is cached for the lifetime of the service instance.
	BotUserID(ctx context.Context) (string, error)

	// PostMessage posts a plain text message to a channel or DM conversation
	PostMessage(ctx context.Context, channelID, text string) error

	// PostDM opens a DM conversation with the user and posts a message
	PostDM(ctx context.Context, userID, text string) error

	// GetUserInfo retrieves user information for the given user ID
	GetUserInfo(ctx context.Context, userID string) (*User, error)
}

// User represents a Slack user
type User struct {
	ID          string
	Name        string
	DisplayName string
	Email       string
}
