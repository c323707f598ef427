package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/service/slack"
	"github.com/secmon-lab/libris/pkg/usecase"
	"github.com/secmon-lab/libris/pkg/utils/async"
	"github.com/secmon-lab/libris/pkg/utils/errutil"
	"github.com/secmon-lab/libris/pkg/utils/logging"
	"github.com/secmon-lab/libris/pkg/utils/safe"
	"github.com/slack-go/slack/slackevents"
)

// verifySlackSignature verifies the Slack request signature
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}
	if signature == "" {
		return goerr.New("missing signature")
	}

	// Check timestamp to prevent replay attacks (within 5 minutes)
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	now := time.Now().Unix()
	if now-ts > 60*5 {
		return goerr.New("timestamp too old", goerr.V("timestamp", timestamp), goerr.V("now", now))
	}

	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	if _, err := mac.Write([]byte(baseString)); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware creates a middleware that verifies Slack request
// signatures before the handler sees the payload
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			defer safe.Close(ctx, r.Body)

			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			if err := verifySlackSignature(signingSecret, timestamp, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "slack signature verification failed"), http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewBuffer(body))
			next.ServeHTTP(w, r)
		})
	}
}

// SlackWebhookHandler handles Slack Events API webhook requests
type SlackWebhookHandler struct {
	uc       *usecase.UseCases
	slackSvc slack.Service
}

// NewSlackWebhookHandler creates a new Slack webhook handler
func NewSlackWebhookHandler(uc *usecase.UseCases, slackSvc slack.Service) *SlackWebhookHandler {
	return &SlackWebhookHandler{
		uc:       uc,
		slackSvc: slackSvc,
	}
}

// ServeHTTP handles Slack webhook requests. Callback events are acknowledged
// immediately and processed in the background to stay inside Slack's 3 second
// response window.
func (h *SlackWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		safe.Write(ctx, w, []byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		// Ack first, process in the background
		w.WriteHeader(http.StatusOK)

		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.handleCallbackEvent(ctx, &eventsAPIEvent)
		})

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", eventsAPIEvent.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *SlackWebhookHandler) handleCallbackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	switch inner := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		return h.handleMessage(ctx, inner.User, inner.BotID, inner.SubType, inner.Channel, inner.Text)
	case *slackevents.AppMentionEvent:
		return h.handleMessage(ctx, inner.User, inner.BotID, "", inner.Channel, inner.Text)
	default:
		logging.From(ctx).Debug("ignoring slack event", "type", event.InnerEvent.Type)
		return nil
	}
}

func (h *SlackWebhookHandler) handleMessage(ctx context.Context, userID, botID, subType, channelID, text string) error {
	// Edits, joins and other subtypes are not conversation turns
	if subType != "" || botID != "" || userID == "" {
		return nil
	}

	botUserID, err := h.slackSvc.BotUserID(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve bot user ID")
	}
	if userID == botUserID {
		return nil
	}

	text = stripMention(text, botUserID)

	return h.uc.HandleSlackMessage(ctx, types.UserID(userID), channelID, text)
}

// stripMention removes the leading bot mention from app_mention event text
func stripMention(text, botUserID string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "<@"+botUserID+">", ""))
}
