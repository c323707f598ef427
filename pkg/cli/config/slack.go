package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the Slack transport
type Slack struct {
	botToken      string
	signingSecret string
	adminUserID   string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("LIBRIS_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Sources:     cli.EnvVars("LIBRIS_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
		&cli.StringFlag{
			Name:        "slack-admin-user-id",
			Usage:       "Slack user ID allowed to approve and reject pairing requests",
			Category:    "Slack",
			Sources:     cli.EnvVars("LIBRIS_SLACK_ADMIN_USER_ID"),
			Destination: &x.adminUserID,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot_token.len", len(x.botToken)),
		slog.Int("signing_secret.len", len(x.signingSecret)),
		slog.String("admin_user_id", x.adminUserID),
	)
}

// BotToken returns the configured bot token
func (x *Slack) BotToken() string {
	return x.botToken
}

// SigningSecret returns the configured signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// AdminUserID returns the configured admin user ID
func (x *Slack) AdminUserID() types.UserID {
	return types.UserID(x.adminUserID)
}

// IsWebhookConfigured reports whether the Slack webhook endpoint can be
// mounted
func (x *Slack) IsWebhookConfigured() bool {
	return x.botToken != "" && x.signingSecret != ""
}

// Configure creates a Slack service from the configured bot token. The
// webhook additionally requires the signing secret and an admin user ID to
// run the pairing flow.
func (x *Slack) Configure() (slack.Service, error) {
	if x.botToken == "" {
		return nil, nil
	}
	if x.signingSecret != "" && x.adminUserID == "" {
		return nil, goerr.New("slack-admin-user-id is required when the webhook is enabled")
	}

	return slack.New(x.botToken)
}
