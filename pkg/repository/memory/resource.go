package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

type resourceRepository struct {
	mu        sync.RWMutex
	resources map[types.ResourceID]*model.Resource
}

func newResourceRepository() *resourceRepository {
	return &resourceRepository{
		resources: make(map[types.ResourceID]*model.Resource),
	}
}

func (r *resourceRepository) Create(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := resource.Clone()
	if created.ID == "" {
		created.ID = types.NewResourceID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.resources[created.ID] = created
	return created.Clone(), nil
}

func (r *resourceRepository) Update(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.resources[resource.ID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "resource not found", goerr.V("id", resource.ID))
	}

	updated := resource.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.resources[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *resourceRepository) Get(ctx context.Context, id types.ResourceID) (*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, ok := r.resources[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "resource not found", goerr.V("id", id))
	}

	return resource.Clone(), nil
}

func (r *resourceRepository) FindByTitleOrURL(ctx context.Context, title, url string) (*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *model.Resource
	for _, resource := range r.resources {
		if resource.Title != title && (url == "" || resource.URL != url) {
			continue
		}
		if found == nil || resource.CreatedAt.After(found.CreatedAt) {
			found = resource
		}
	}

	if found == nil {
		return nil, nil
	}
	return found.Clone(), nil
}

func (r *resourceRepository) SemanticSearch(ctx context.Context, embedding []float32, query *interfaces.SemanticQuery) ([]*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		resource *model.Resource
		distance float64
	}

	var candidates []scored
	for _, resource := range r.resources {
		if resource.Embedding == nil {
			continue
		}
		if query.Tags != "" && resource.Tags != query.Tags {
			continue
		}
		if query.Categories != "" && resource.Categories != query.Categories {
			continue
		}
		d := cosineDistance(embedding, resource.Embedding)
		if d > query.MatchThreshold {
			continue
		}
		candidates = append(candidates, scored{resource: resource, distance: d})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	limit := query.MatchCount
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	results := make([]*model.Resource, 0, limit)
	for _, c := range candidates[:limit] {
		results = append(results, c.resource.Clone())
	}
	return results, nil
}

func (r *resourceRepository) KeywordSearch(ctx context.Context, query *interfaces.KeywordQuery) ([]*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*model.Resource
	for _, resource := range r.resources {
		if query.Tags != "" && !containsFold(resource.Tags, query.Tags) {
			continue
		}
		if query.Categories != "" && !containsFold(resource.Categories, query.Categories) {
			continue
		}
		if len(query.Terms) > 0 && !matchesAnyTerm(resource, query.Terms) {
			continue
		}
		matched = append(matched, resource.Clone())
	}

	// Newest first, mirroring the created_at ordering of the SQL backend
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func matchesAnyTerm(resource *model.Resource, terms []string) bool {
	fields := []string{resource.Title, resource.URL, resource.Notes, resource.Tags, resource.Categories}
	for _, term := range terms {
		for _, field := range fields {
			if containsFold(field, term) {
				return true
			}
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// cosineDistance returns 1 - cosine similarity, matching the pgvector <=>
// operator. Mismatched or zero vectors are treated as maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 2.0
	}
	return 1.0 - dot/denom
}
