package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/utils/errutil"
	"github.com/secmon-lab/libris/pkg/utils/logging"
)

// HandleSlackMessage processes one inbound Slack message: command handling,
// the pairing gate, then the regular turn handler. The reply is posted back
// to the channel the message came from.
func (uc *UseCases) HandleSlackMessage(ctx context.Context, userID types.UserID, channelID, text string) error {
	if uc.slackSvc == nil {
		return goerr.New("slack service is not configured")
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	if reply, handled := uc.handleCommand(ctx, userID, trimmed); handled {
		return uc.slackSvc.PostMessage(ctx, channelID, reply)
	}

	allowed, err := uc.IsAllowed(ctx, userID)
	if err != nil {
		return goerr.Wrap(err, "failed to check allowlist", goerr.V("userID", userID))
	}
	if !allowed {
		return uc.handleUnpairedMessage(ctx, userID, channelID, trimmed)
	}

	reply := uc.HandleTurn(ctx, userID, trimmed)
	return uc.slackSvc.PostMessage(ctx, channelID, reply)
}

// handleUnpairedMessage registers a pairing request for an unknown user and
// notifies the admin with the code, the requester's name, and a preview of
// what they said.
func (uc *UseCases) handleUnpairedMessage(ctx context.Context, userID types.UserID, channelID, text string) error {
	userName := string(userID)
	displayName := ""
	if info, err := uc.slackSvc.GetUserInfo(ctx, string(userID)); err == nil {
		userName = info.Name
		displayName = info.DisplayName
	} else {
		logging.From(ctx).Warn("failed to resolve user info for pairing request",
			"error", err, "userID", userID)
	}

	entry, created, err := uc.RequestPairing(ctx, userID, userName, displayName, text)
	if err != nil {
		if errors.Is(err, interfaces.ErrPairingQueueFull) {
			return uc.slackSvc.PostMessage(ctx, channelID,
				"Too many people are waiting for approval right now. Please try again later.")
		}
		return goerr.Wrap(err, "failed to register pairing request", goerr.V("userID", userID))
	}

	if created {
		uc.notifyAdminOfPairing(ctx, entry.Code, userName, displayName, entry.MessagePreview)
		return uc.slackSvc.PostMessage(ctx, channelID, fmt.Sprintf(
			"Hi! I don't know you yet. I've asked my admin to approve you. Your pairing code is `%s`.",
			entry.Code))
	}

	return uc.slackSvc.PostMessage(ctx, channelID, fmt.Sprintf(
		"Your pairing request (code `%s`) is still waiting for approval.", entry.Code))
}

func (uc *UseCases) notifyAdminOfPairing(ctx context.Context, code, userName, displayName, preview string) {
	if uc.adminID == "" {
		return
	}

	name := userName
	if displayName != "" {
		name = fmt.Sprintf("%s (@%s)", displayName, userName)
	}

	msg := fmt.Sprintf("New pairing request from %s\nCode: `%s`\n> %s\nReply `pairing approve %s` or `pairing reject %s`.",
		name, code, preview, code, code)
	if err := uc.slackSvc.PostDM(ctx, string(uc.adminID), msg); err != nil {
		errutil.Handle(ctx, err, "failed to notify admin of pairing request")
	}
}

// handleCommand dispatches the small command vocabulary. Returns handled=false
// when the text is a regular conversation turn.
func (uc *UseCases) handleCommand(ctx context.Context, userID types.UserID, text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}

	switch strings.ToLower(fields[0]) {
	case "help":
		return uc.helpText(userID), true
	case "status":
		return uc.statusText(ctx, userID), true
	case "pairing":
		return uc.handlePairingCommand(ctx, userID, fields[1:]), true
	default:
		return "", false
	}
}

const pairingUsage = "Usage: `pairing list` | `pairing approve CODE` | `pairing reject CODE` | `pairing revoke USER_ID`"

func (uc *UseCases) handlePairingCommand(ctx context.Context, userID types.UserID, args []string) string {
	if len(args) == 0 {
		return pairingUsage
	}

	switch strings.ToLower(args[0]) {
	case "list":
		pending, err := uc.ListPendingPairings(ctx, userID)
		if err != nil {
			return uc.pairingErrorText(ctx, err)
		}
		if len(pending) == 0 {
			return "No pending pairing requests."
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d pending pairing request(s):\n", len(pending))
		for _, req := range pending {
			fmt.Fprintf(&sb, "- `%s` %s (@%s) at %s\n  > %s\n",
				req.Code, req.DisplayName, req.UserName,
				req.RequestedAt.Format("2006-01-02 15:04"), req.MessagePreview)
		}
		return strings.TrimRight(sb.String(), "\n")

	case "approve":
		if len(args) < 2 {
			return pairingUsage
		}
		approved, err := uc.ApprovePairing(ctx, userID, args[1])
		if err != nil {
			return uc.pairingErrorText(ctx, err)
		}
		if err := uc.slackSvc.PostDM(ctx, string(approved.UserID),
			"You're in! The librarian is ready. Ask me to save or find resources anytime."); err != nil {
			errutil.Handle(ctx, err, "failed to notify approved user")
		}
		return fmt.Sprintf("Approved %s (@%s).", approved.DisplayName, approved.UserName)

	case "reject":
		if len(args) < 2 {
			return pairingUsage
		}
		rejected, err := uc.RejectPairing(ctx, userID, args[1])
		if err != nil {
			return uc.pairingErrorText(ctx, err)
		}
		return fmt.Sprintf("Rejected the request from %s (@%s).", rejected.DisplayName, rejected.UserName)

	case "revoke":
		if len(args) < 2 {
			return pairingUsage
		}
		if err := uc.RevokePairing(ctx, userID, types.UserID(args[1])); err != nil {
			return uc.pairingErrorText(ctx, err)
		}
		return fmt.Sprintf("Revoked access for %s.", args[1])

	default:
		return pairingUsage
	}
}

func (uc *UseCases) pairingErrorText(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, ErrNotAdmin):
		return "Only the admin can manage pairing."
	case errors.Is(err, interfaces.ErrCodeNotFound):
		return "I don't know that code. Check `pairing list` for live requests."
	case errors.Is(err, interfaces.ErrCodeExpired):
		return "That code has expired. The user needs to message me again for a new one."
	default:
		errutil.Handle(ctx, err, "pairing command failed")
		return "Sorry, that pairing operation failed. Please try again."
	}
}

func (uc *UseCases) helpText(userID types.UserID) string {
	var sb strings.Builder
	sb.WriteString("I'm your resource librarian. Things you can say:\n")
	sb.WriteString("- \"save https://example.com, a neat article about Go\"\n")
	sb.WriteString("- \"find my articles about machine learning\"\n")
	sb.WriteString("- anything else, and we'll just chat\n")
	sb.WriteString("Commands: `status`, `help`")
	if uc.adminID != "" && userID == uc.adminID {
		sb.WriteString("\nAdmin: " + pairingUsage)
	}
	return sb.String()
}

func (uc *UseCases) statusText(ctx context.Context, userID types.UserID) string {
	status, pending, err := uc.PairingStatusOf(ctx, userID)
	if err != nil {
		errutil.Handle(ctx, err, "status check failed")
		return "Sorry, I could not check your status right now."
	}

	switch status {
	case types.PairingStatusApproved:
		return "You're paired and ready to go."
	case types.PairingStatusPending:
		return fmt.Sprintf("Your pairing request (code `%s`) is waiting for approval.", pending.Code)
	default:
		return "You're not paired yet. Send me a message and I'll request approval for you."
	}
}
