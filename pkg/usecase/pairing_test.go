package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/repository/memory"
	"github.com/secmon-lab/libris/pkg/usecase"
)

const testAdminID = types.UserID("U-ADMIN")

func TestPairing(t *testing.T) {
	ctx := context.Background()

	newUC := func(opts ...usecase.Option) *usecase.UseCases {
		opts = append([]usecase.Option{usecase.WithAdminUserID(testAdminID)}, opts...)
		return usecase.New(memory.New(), &mockLLMClient{}, opts...)
	}

	t.Run("request issues a code and approval allows the user", func(t *testing.T) {
		uc := newUC()

		entry, created, err := uc.RequestPairing(ctx, "U-001", "alice", "Alice", "hello bot")
		gt.NoError(t, err).Required()
		gt.Value(t, created).Equal(true)
		gt.Value(t, len(entry.Code)).Equal(model.PairingCodeLength)

		allowed, err := uc.IsAllowed(ctx, "U-001")
		gt.NoError(t, err).Required()
		gt.Value(t, allowed).Equal(false)

		approved, err := uc.ApprovePairing(ctx, testAdminID, entry.Code)
		gt.NoError(t, err).Required()
		gt.Value(t, approved.UserID).Equal(types.UserID("U-001"))

		allowed, err = uc.IsAllowed(ctx, "U-001")
		gt.NoError(t, err).Required()
		gt.Value(t, allowed).Equal(true)
	})

	t.Run("repeated requests reuse the pending code", func(t *testing.T) {
		uc := newUC()

		first, created, err := uc.RequestPairing(ctx, "U-002", "bob", "Bob", "first message")
		gt.NoError(t, err).Required()
		gt.Value(t, created).Equal(true)

		second, created, err := uc.RequestPairing(ctx, "U-002", "bob", "Bob", "second message")
		gt.NoError(t, err).Required()
		gt.Value(t, created).Equal(false)
		gt.Value(t, second.Code).Equal(first.Code)
	})

	t.Run("non-admin cannot manage pairing", func(t *testing.T) {
		uc := newUC()

		entry, _, err := uc.RequestPairing(ctx, "U-003", "carol", "Carol", "hi")
		gt.NoError(t, err).Required()

		_, err = uc.ApprovePairing(ctx, "U-003", entry.Code)
		gt.Value(t, errors.Is(err, usecase.ErrNotAdmin)).Equal(true)

		_, err = uc.RejectPairing(ctx, "U-999", entry.Code)
		gt.Value(t, errors.Is(err, usecase.ErrNotAdmin)).Equal(true)

		_, err = uc.ListPendingPairings(ctx, "U-999")
		gt.Value(t, errors.Is(err, usecase.ErrNotAdmin)).Equal(true)

		err = uc.RevokePairing(ctx, "U-999", "U-003")
		gt.Value(t, errors.Is(err, usecase.ErrNotAdmin)).Equal(true)
	})

	t.Run("expired codes cannot be approved", func(t *testing.T) {
		current := time.Now().UTC()
		uc := newUC(usecase.WithNow(func() time.Time { return current }))

		entry, _, err := uc.RequestPairing(ctx, "U-004", "dave", "Dave", "hi")
		gt.NoError(t, err).Required()

		// Advance past the pairing TTL
		current = current.Add(2 * time.Hour)

		_, err = uc.ApprovePairing(ctx, testAdminID, entry.Code)
		gt.Value(t, errors.Is(err, interfaces.ErrCodeExpired)).Equal(true)
	})

	t.Run("queue capacity is enforced", func(t *testing.T) {
		settings := model.DefaultSettings()
		settings.PairingPendingLimit = 2
		uc := newUC(usecase.WithSettings(settings))

		for i, userID := range []types.UserID{"U-010", "U-011"} {
			_, _, err := uc.RequestPairing(ctx, userID, "user", "User", "hi")
			if err != nil {
				t.Fatalf("RequestPairing %d failed: %v", i, err)
			}
		}

		_, _, err := uc.RequestPairing(ctx, "U-012", "late", "Late", "hi")
		gt.Value(t, errors.Is(err, interfaces.ErrPairingQueueFull)).Equal(true)
	})

	t.Run("revoke removes access", func(t *testing.T) {
		uc := newUC()

		entry, _, err := uc.RequestPairing(ctx, "U-005", "erin", "Erin", "hi")
		gt.NoError(t, err).Required()
		_, err = uc.ApprovePairing(ctx, testAdminID, entry.Code)
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.RevokePairing(ctx, testAdminID, "U-005"))

		allowed, err := uc.IsAllowed(ctx, "U-005")
		gt.NoError(t, err).Required()
		gt.Value(t, allowed).Equal(false)
	})

	t.Run("admin is always allowed", func(t *testing.T) {
		uc := newUC()

		allowed, err := uc.IsAllowed(ctx, testAdminID)
		gt.NoError(t, err).Required()
		gt.Value(t, allowed).Equal(true)
	})

	t.Run("status follows the pairing flow", func(t *testing.T) {
		uc := newUC()

		status, _, err := uc.PairingStatusOf(ctx, "U-007")
		gt.NoError(t, err).Required()
		gt.Value(t, status).Equal(types.PairingStatusUnknown)

		entry, _, err := uc.RequestPairing(ctx, "U-007", "grace", "Grace", "hi")
		gt.NoError(t, err).Required()

		status, pending, err := uc.PairingStatusOf(ctx, "U-007")
		gt.NoError(t, err).Required()
		gt.Value(t, status).Equal(types.PairingStatusPending)
		gt.Value(t, pending.Code).Equal(entry.Code)

		_, err = uc.ApprovePairing(ctx, testAdminID, entry.Code)
		gt.NoError(t, err).Required()

		status, _, err = uc.PairingStatusOf(ctx, "U-007")
		gt.NoError(t, err).Required()
		gt.Value(t, status).Equal(types.PairingStatusApproved)
	})

	t.Run("message preview is trimmed", func(t *testing.T) {
		uc := newUC()

		long := ""
		for i := 0; i < 50; i++ {
			long += "sentence fragment "
		}
		entry, _, err := uc.RequestPairing(ctx, "U-006", "frank", "Frank", long)
		gt.NoError(t, err).Required()
		gt.Value(t, len([]rune(entry.MessagePreview)) <= 200).Equal(true)
	})
}
