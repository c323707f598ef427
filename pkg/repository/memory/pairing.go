package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

type pairingRepository struct {
	mu        sync.Mutex
	pending   map[string]*model.PairingRequest
	allowlist map[types.UserID]*model.ApprovedUser
}

func newPairingRepository() *pairingRepository {
	return &pairingRepository{
		pending:   make(map[string]*model.PairingRequest),
		allowlist: make(map[types.UserID]*model.ApprovedUser),
	}
}

func copyPairingRequest(req *model.PairingRequest) *model.PairingRequest {
	copied := *req
	return &copied
}

// purgeExpired drops pending entries requested before the cutoff. Callers
// must hold the mutex.
func (r *pairingRepository) purgeExpired(expireBefore time.Time) {
	for code, req := range r.pending {
		if req.Expired(expireBefore) {
			delete(r.pending, code)
		}
	}
}

func (r *pairingRepository) CreatePending(ctx context.Context, req *model.PairingRequest, expireBefore time.Time, limit int) (*model.PairingRequest, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, goerr.Wrap(err, "invalid pairing request")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.purgeExpired(expireBefore)

	for _, existing := range r.pending {
		if existing.UserID == req.UserID {
			return copyPairingRequest(existing), false, nil
		}
	}

	if len(r.pending) >= limit {
		return nil, false, goerr.Wrap(interfaces.ErrPairingQueueFull, "cannot register pairing request",
			goerr.V("limit", limit))
	}

	if _, taken := r.pending[req.Code]; taken {
		return nil, false, goerr.Wrap(interfaces.ErrCodeCollision, "cannot register pairing request",
			goerr.V("code", req.Code))
	}

	created := copyPairingRequest(req)
	r.pending[created.Code] = created
	return copyPairingRequest(created), true, nil
}

func (r *pairingRepository) GetPendingByUser(ctx context.Context, userID types.UserID, expireBefore time.Time) (*model.PairingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.purgeExpired(expireBefore)

	for _, req := range r.pending {
		if req.UserID == userID {
			return copyPairingRequest(req), nil
		}
	}
	return nil, nil
}

func (r *pairingRepository) ListPending(ctx context.Context, expireBefore time.Time) ([]*model.PairingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.purgeExpired(expireBefore)

	result := make([]*model.PairingRequest, 0, len(r.pending))
	for _, req := range r.pending {
		result = append(result, copyPairingRequest(req))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RequestedAt.Before(result[j].RequestedAt)
	})
	return result, nil
}

func (r *pairingRepository) findByCode(code string) *model.PairingRequest {
	for c, req := range r.pending {
		if strings.EqualFold(c, code) {
			return req
		}
	}
	return nil
}

func (r *pairingRepository) Approve(ctx context.Context, code string, expireBefore, approvedAt time.Time) (*model.PairingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req := r.findByCode(code)
	if req == nil {
		return nil, goerr.Wrap(interfaces.ErrCodeNotFound, "cannot approve", goerr.V("code", code))
	}
	if req.Expired(expireBefore) {
		delete(r.pending, req.Code)
		return nil, goerr.Wrap(interfaces.ErrCodeExpired, "cannot approve", goerr.V("code", code))
	}

	delete(r.pending, req.Code)
	r.allowlist[req.UserID] = &model.ApprovedUser{
		UserID:     req.UserID,
		ApprovedAt: approvedAt,
	}
	return copyPairingRequest(req), nil
}

func (r *pairingRepository) Reject(ctx context.Context, code string, expireBefore time.Time) (*model.PairingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req := r.findByCode(code)
	if req == nil {
		return nil, goerr.Wrap(interfaces.ErrCodeNotFound, "cannot reject", goerr.V("code", code))
	}
	if req.Expired(expireBefore) {
		delete(r.pending, req.Code)
		return nil, goerr.Wrap(interfaces.ErrCodeExpired, "cannot reject", goerr.V("code", code))
	}

	delete(r.pending, req.Code)
	return copyPairingRequest(req), nil
}

func (r *pairingRepository) IsAllowed(ctx context.Context, userID types.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.allowlist[userID]
	return ok, nil
}

func (r *pairingRepository) Revoke(ctx context.Context, userID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.allowlist, userID)
	return nil
}
