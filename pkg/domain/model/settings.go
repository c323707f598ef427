package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// EmbeddingDimension is the default dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions.
const EmbeddingDimension = 768

// Settings holds the librarian tunables that can be overridden from the TOML
// configuration file.
type Settings struct {
	// EmbeddingDimension is the fixed length of resource embedding vectors
	EmbeddingDimension int

	// MatchThreshold is the maximum cosine distance for semantic matches.
	// Cosine distance ranges over [0, 2], so the default of 2.0 keeps every
	// candidate and the top-K nearest rows are always returned.
	MatchThreshold float64

	// MatchCount is the default number of results per fetch
	MatchCount int

	// MatchCountMax caps the per-fetch result count requested by the user
	MatchCountMax int

	// PairingCodeTTL is how long a pending pairing request stays valid
	PairingCodeTTL time.Duration

	// PairingPendingLimit caps concurrent pending pairing requests
	PairingPendingLimit int
}

// DefaultSettings returns the built-in tunables
func DefaultSettings() Settings {
	return Settings{
		EmbeddingDimension:  EmbeddingDimension,
		MatchThreshold:      2.0,
		MatchCount:          5,
		MatchCountMax:       25,
		PairingCodeTTL:      time.Hour,
		PairingPendingLimit: 5,
	}
}

// Validate checks the settings invariants
func (x *Settings) Validate() error {
	if x.EmbeddingDimension <= 0 {
		return goerr.New("embedding dimension must be positive", goerr.V("dimension", x.EmbeddingDimension))
	}
	if x.MatchThreshold <= 0 || x.MatchThreshold > 2.0 {
		return goerr.New("match threshold must be in (0, 2]", goerr.V("threshold", x.MatchThreshold))
	}
	if x.MatchCount <= 0 || x.MatchCount > x.MatchCountMax {
		return goerr.New("match count must be in [1, max]",
			goerr.V("count", x.MatchCount), goerr.V("max", x.MatchCountMax))
	}
	if x.PairingCodeTTL <= 0 {
		return goerr.New("pairing code TTL must be positive", goerr.V("ttl", x.PairingCodeTTL))
	}
	if x.PairingPendingLimit <= 0 {
		return goerr.New("pairing pending limit must be positive", goerr.V("limit", x.PairingPendingLimit))
	}
	return nil
}
