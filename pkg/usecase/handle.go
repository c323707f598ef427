package usecase

import (
	"context"
	"errors"

	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/utils/errutil"
)

// HandleTurn runs one classify-act-respond cycle and returns the reply text.
// Failures inside an action become user-facing messages; the conversation
// never terminates on a provider error.
func (uc *UseCases) HandleTurn(ctx context.Context, userID types.UserID, text string) string {
	parsed := uc.Classify(ctx, text)

	switch parsed.Intent {
	case types.IntentStore:
		resource, updated, err := uc.Store(ctx, parsed.Resource, text)
		if err != nil {
			if errors.Is(err, ErrTitleRequired) {
				return "I need at least a title or a URL to save that. Could you tell me what to call it?"
			}
			errutil.Handle(ctx, err, "store action failed")
			return "Sorry, I could not save that right now. Please try again in a moment."
		}
		return formatStoreReply(resource, updated)

	case types.IntentFetch:
		result, err := uc.Fetch(ctx, parsed.Query)
		if err != nil {
			if errors.Is(err, ErrNoMatches) {
				return "I could not find anything matching that in your library. Try different keywords, or save it first!"
			}
			errutil.Handle(ctx, err, "fetch action failed")
			return "Sorry, the search failed. Please try again in a moment."
		}
		return formatFetchReply(result)

	default:
		reply, err := uc.Chat(ctx, userID, text)
		if err != nil {
			errutil.Handle(ctx, err, "chat fallback failed")
			return "Sorry, I had trouble answering that. Please try again."
		}
		return reply
	}
}
