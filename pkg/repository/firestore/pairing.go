package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	pendingCollection   = "pairing_pending"
	allowlistCollection = "pairing_allowlist"
)

func pendingDocID(code string) string {
	return strings.ToUpper(code)
}

func (x *Client) CreatePending(ctx context.Context, req *model.PairingRequest, expireBefore time.Time, limit int) (*model.PairingRequest, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, goerr.Wrap(err, "invalid pairing request")
	}

	var (
		entry   *model.PairingRequest
		created bool
	)
	err := x.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		entry, created = nil, false

		docs, err := tx.Documents(x.collection(pendingCollection)).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to list pending pairing requests")
		}

		var expired []*firestore.DocumentRef
		live := 0
		codeTaken := false
		for _, doc := range docs {
			var p model.PairingRequest
			if err := doc.DataTo(&p); err != nil {
				return goerr.Wrap(err, "failed to unmarshal pending pairing request")
			}
			if p.Expired(expireBefore) {
				expired = append(expired, doc.Ref)
				continue
			}
			if p.UserID == req.UserID {
				entry = &p
			}
			if doc.Ref.ID == pendingDocID(req.Code) {
				codeTaken = true
			}
			live++
		}

		for _, ref := range expired {
			if err := tx.Delete(ref); err != nil {
				return goerr.Wrap(err, "failed to purge expired pairing request")
			}
		}

		if entry != nil {
			return nil
		}
		if live >= limit {
			return goerr.Wrap(interfaces.ErrPairingQueueFull, "cannot register pairing request",
				goerr.V("limit", limit))
		}
		if codeTaken {
			return goerr.Wrap(interfaces.ErrCodeCollision, "cannot register pairing request",
				goerr.V("code", req.Code))
		}

		ref := x.collection(pendingCollection).Doc(pendingDocID(req.Code))
		if err := tx.Create(ref, req); err != nil {
			return goerr.Wrap(err, "failed to create pending pairing request")
		}

		copied := *req
		entry = &copied
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return entry, created, nil
}

func (x *Client) GetPendingByUser(ctx context.Context, userID types.UserID, expireBefore time.Time) (*model.PairingRequest, error) {
	docs, err := x.collection(pendingCollection).
		Where("UserID", "==", string(userID)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query pending pairing requests", goerr.V("userID", userID))
	}

	for _, doc := range docs {
		var p model.PairingRequest
		if err := doc.DataTo(&p); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal pending pairing request")
		}
		if p.Expired(expireBefore) {
			continue
		}
		return &p, nil
	}

	return nil, nil
}

func (x *Client) ListPending(ctx context.Context, expireBefore time.Time) ([]*model.PairingRequest, error) {
	docs, err := x.collection(pendingCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pending pairing requests")
	}

	var result []*model.PairingRequest
	for _, doc := range docs {
		var p model.PairingRequest
		if err := doc.DataTo(&p); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal pending pairing request")
		}
		if p.Expired(expireBefore) {
			continue
		}
		result = append(result, &p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RequestedAt.Before(result[j].RequestedAt)
	})

	return result, nil
}

func (x *Client) Approve(ctx context.Context, code string, expireBefore, approvedAt time.Time) (*model.PairingRequest, error) {
	var approved *model.PairingRequest
	err := x.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		approved = nil

		ref := x.collection(pendingCollection).Doc(pendingDocID(code))
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrCodeNotFound, "cannot approve", goerr.V("code", code))
			}
			return goerr.Wrap(err, "failed to get pending pairing request", goerr.V("code", code))
		}

		var req model.PairingRequest
		if err := doc.DataTo(&req); err != nil {
			return goerr.Wrap(err, "failed to unmarshal pending pairing request")
		}
		if req.Expired(expireBefore) {
			return goerr.Wrap(interfaces.ErrCodeExpired, "cannot approve", goerr.V("code", code))
		}

		if err := tx.Delete(ref); err != nil {
			return goerr.Wrap(err, "failed to delete pending pairing request")
		}

		allowRef := x.collection(allowlistCollection).Doc(string(req.UserID))
		if err := tx.Set(allowRef, &model.ApprovedUser{
			UserID:     req.UserID,
			ApprovedAt: approvedAt,
		}); err != nil {
			return goerr.Wrap(err, "failed to add user to allowlist")
		}

		approved = &req
		return nil
	})
	if err != nil {
		return nil, err
	}

	return approved, nil
}

func (x *Client) Reject(ctx context.Context, code string, expireBefore time.Time) (*model.PairingRequest, error) {
	var rejected *model.PairingRequest
	err := x.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		rejected = nil

		ref := x.collection(pendingCollection).Doc(pendingDocID(code))
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrCodeNotFound, "cannot reject", goerr.V("code", code))
			}
			return goerr.Wrap(err, "failed to get pending pairing request", goerr.V("code", code))
		}

		var req model.PairingRequest
		if err := doc.DataTo(&req); err != nil {
			return goerr.Wrap(err, "failed to unmarshal pending pairing request")
		}
		if req.Expired(expireBefore) {
			return goerr.Wrap(interfaces.ErrCodeExpired, "cannot reject", goerr.V("code", code))
		}

		if err := tx.Delete(ref); err != nil {
			return goerr.Wrap(err, "failed to delete pending pairing request")
		}

		rejected = &req
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rejected, nil
}

func (x *Client) IsAllowed(ctx context.Context, userID types.UserID) (bool, error) {
	_, err := x.collection(allowlistCollection).Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get allowlist entry", goerr.V("userID", userID))
	}
	return true, nil
}

func (x *Client) Revoke(ctx context.Context, userID types.UserID) error {
	if _, err := x.collection(allowlistCollection).Doc(string(userID)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete allowlist entry", goerr.V("userID", userID))
	}
	return nil
}
