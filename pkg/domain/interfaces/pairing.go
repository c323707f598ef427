package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

// PairingRepository defines the interface for the pairing queue and the
// allowlist. Every mutating operation takes expireBefore: entries requested
// before that instant are treated as expired and purged inside the same
// lock or transaction as the mutation, so an expired code can never win an
// approval race.
type PairingRepository interface {
	// CreatePending registers a new pending request. If the user already has
	// a live pending request it is returned with created=false. Returns
	// ErrPairingQueueFull when the live pending count is at limit, and
	// ErrCodeCollision when the generated code is already taken.
	CreatePending(ctx context.Context, req *model.PairingRequest, expireBefore time.Time, limit int) (entry *model.PairingRequest, created bool, err error)

	// GetPendingByUser returns the live pending request of the user, or nil
	GetPendingByUser(ctx context.Context, userID types.UserID, expireBefore time.Time) (*model.PairingRequest, error)

	// ListPending returns live pending requests ordered by request time
	ListPending(ctx context.Context, expireBefore time.Time) ([]*model.PairingRequest, error)

	// Approve removes the pending entry and adds the requester to the
	// allowlist in one atomic step. Returns ErrCodeNotFound for unknown
	// codes and ErrCodeExpired for expired ones. Codes match
	// case-insensitively.
	Approve(ctx context.Context, code string, expireBefore, approvedAt time.Time) (*model.PairingRequest, error)

	// Reject removes the pending entry without touching the allowlist
	Reject(ctx context.Context, code string, expireBefore time.Time) (*model.PairingRequest, error)

	// IsAllowed reports whether the user is on the allowlist
	IsAllowed(ctx context.Context, userID types.UserID) (bool, error)

	// Revoke removes the user from the allowlist. Unknown users are a no-op.
	Revoke(ctx context.Context, userID types.UserID) error
}
