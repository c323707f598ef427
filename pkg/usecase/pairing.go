package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

// codeRetryLimit bounds regeneration attempts when a random code collides
const codeRetryLimit = 5

func (uc *UseCases) pairingExpireBefore() time.Time {
	return uc.now().Add(-uc.settings.PairingCodeTTL)
}

// RequestPairing registers a pairing request for an unrecognized user. When
// the user already has a live pending request it is returned with
// created=false so the same code can be shown again.
func (uc *UseCases) RequestPairing(ctx context.Context, userID types.UserID, userName, displayName, message string) (*model.PairingRequest, bool, error) {
	for attempt := 0; attempt < codeRetryLimit; attempt++ {
		code, err := model.NewPairingCode()
		if err != nil {
			return nil, false, err
		}

		req := &model.PairingRequest{
			Code:           code,
			UserID:         userID,
			UserName:       userName,
			DisplayName:    displayName,
			MessagePreview: model.TrimPreview(message),
			RequestedAt:    uc.now(),
		}

		entry, created, err := uc.repo.Pairing().CreatePending(ctx, req, uc.pairingExpireBefore(), uc.settings.PairingPendingLimit)
		if errors.Is(err, interfaces.ErrCodeCollision) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return entry, created, nil
	}

	return nil, false, goerr.New("could not generate a unique pairing code", goerr.V("attempts", codeRetryLimit))
}

// ApprovePairing moves the requester behind the code onto the allowlist.
// Only the configured admin may call it.
func (uc *UseCases) ApprovePairing(ctx context.Context, caller types.UserID, code string) (*model.PairingRequest, error) {
	if err := uc.requireAdmin(caller); err != nil {
		return nil, err
	}

	return uc.repo.Pairing().Approve(ctx, code, uc.pairingExpireBefore(), uc.now())
}

// RejectPairing discards the pending request behind the code
func (uc *UseCases) RejectPairing(ctx context.Context, caller types.UserID, code string) (*model.PairingRequest, error) {
	if err := uc.requireAdmin(caller); err != nil {
		return nil, err
	}

	return uc.repo.Pairing().Reject(ctx, code, uc.pairingExpireBefore())
}

// RevokePairing removes a user from the allowlist
func (uc *UseCases) RevokePairing(ctx context.Context, caller types.UserID, target types.UserID) error {
	if err := uc.requireAdmin(caller); err != nil {
		return err
	}

	return uc.repo.Pairing().Revoke(ctx, target)
}

// ListPendingPairings returns live pending requests ordered by request time
func (uc *UseCases) ListPendingPairings(ctx context.Context, caller types.UserID) ([]*model.PairingRequest, error) {
	if err := uc.requireAdmin(caller); err != nil {
		return nil, err
	}

	return uc.repo.Pairing().ListPending(ctx, uc.pairingExpireBefore())
}

// IsAllowed reports whether the user may talk to the librarian
func (uc *UseCases) IsAllowed(ctx context.Context, userID types.UserID) (bool, error) {
	if uc.adminID != "" && userID == uc.adminID {
		return true, nil
	}
	return uc.repo.Pairing().IsAllowed(ctx, userID)
}

// PendingPairing returns the live pending request of the user, or nil
func (uc *UseCases) PendingPairing(ctx context.Context, userID types.UserID) (*model.PairingRequest, error) {
	return uc.repo.Pairing().GetPendingByUser(ctx, userID, uc.pairingExpireBefore())
}

// PairingStatusOf reports where a user stands in the pairing flow. The pending
// request is returned alongside PairingStatusPending so callers can show the
// code without a second lookup.
func (uc *UseCases) PairingStatusOf(ctx context.Context, userID types.UserID) (types.PairingStatus, *model.PairingRequest, error) {
	allowed, err := uc.IsAllowed(ctx, userID)
	if err != nil {
		return types.PairingStatusUnknown, nil, err
	}
	if allowed {
		return types.PairingStatusApproved, nil, nil
	}

	pending, err := uc.PendingPairing(ctx, userID)
	if err != nil {
		return types.PairingStatusUnknown, nil, err
	}
	if pending != nil {
		return types.PairingStatusPending, pending, nil
	}
	return types.PairingStatusUnknown, nil, nil
}

func (uc *UseCases) requireAdmin(caller types.UserID) error {
	if uc.adminID == "" || caller != uc.adminID {
		return goerr.Wrap(ErrNotAdmin, "pairing management denied", goerr.V("caller", caller))
	}
	return nil
}
