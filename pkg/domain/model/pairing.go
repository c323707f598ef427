package model

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

// PairingCodeAlphabet omits ambiguous characters (0/O, 1/I/L) so codes can be
// relayed verbally or retyped by the admin.
const PairingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PairingCodeLength is the fixed length of a pairing code
const PairingCodeLength = 8

// PairingRequest is a pending request from an unrecognized chat identity
type PairingRequest struct {
	Code           string
	UserID         types.UserID
	UserName       string
	DisplayName    string
	MessagePreview string
	RequestedAt    time.Time
}

// Validate checks the pairing request invariants
func (x *PairingRequest) Validate() error {
	if len(x.Code) != PairingCodeLength {
		return goerr.New("pairing code must be 8 characters", goerr.V("code", x.Code))
	}
	if x.UserID == "" {
		return goerr.New("pairing request requires a user ID")
	}
	if x.RequestedAt.IsZero() {
		return goerr.New("pairing request requires a timestamp")
	}
	return nil
}

// Expired reports whether the request was made before the expiry cutoff
func (x *PairingRequest) Expired(expireBefore time.Time) bool {
	return x.RequestedAt.Before(expireBefore)
}

// ApprovedUser is an allowlist entry, durable across restarts
type ApprovedUser struct {
	UserID     types.UserID
	ApprovedAt time.Time
}

// NewPairingCode generates a random 8 character code from the pairing alphabet
func NewPairingCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(PairingCodeAlphabet)))
	for i := 0; i < PairingCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate pairing code")
		}
		sb.WriteByte(PairingCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// TrimPreview collapses whitespace and truncates the message preview shown to
// the admin alongside a pairing request.
func TrimPreview(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	runes := []rune(cleaned)
	if len(runes) <= 200 {
		return cleaned
	}
	return string(runes[:199]) + "…"
}
