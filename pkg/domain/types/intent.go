package types

import "strings"

// Intent represents the classified purpose of a user turn
type Intent string

const (
	IntentStore Intent = "store"
	IntentFetch Intent = "fetch"
	IntentChat  Intent = "chat"
)

// AllIntents returns all valid intents
func AllIntents() []Intent {
	return []Intent{IntentStore, IntentFetch, IntentChat}
}

// IsValid checks if the intent is valid
func (x Intent) IsValid() bool {
	switch x {
	case IntentStore, IntentFetch, IntentChat:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intent
func (x Intent) String() string {
	return string(x)
}

// NormalizeIntent maps the classifier's free-form intent label onto a valid
// Intent. LLMs answer with aliases like "save" or "search"; anything
// unrecognized falls back to IntentChat so the conversation never dead-ends.
func NormalizeIntent(raw string) Intent {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "store", "save", "add", "store_resource":
		return IntentStore
	case "fetch", "retrieve", "search", "find", "recommend", "fetch_resource":
		return IntentFetch
	default:
		return IntentChat
	}
}
