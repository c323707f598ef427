package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/utils/logging"
)

// FetchResult is the outcome of one fetch turn. Degraded is set when vector
// search was unavailable and only keyword matching ran.
type FetchResult struct {
	Resources []*model.Resource
	Degraded  bool
}

// Fetch runs a blended search: vector similarity first, keyword fallback
// merged behind it, deduplicated by ID and capped at the coerced limit.
// Returns ErrNoMatches alongside the empty result when nothing matched.
func (uc *UseCases) Fetch(ctx context.Context, query model.ResourceQuery) (*FetchResult, error) {
	logger := logging.From(ctx)

	limit := coerceLimit(query.Limit, uc.settings.MatchCount, uc.settings.MatchCountMax)
	tags := model.FirstValue(query.Tags)
	categories := model.FirstValue(query.Categories)

	result := &FetchResult{}

	if strings.TrimSpace(query.Query) != "" {
		if uc.embedder == nil {
			result.Degraded = true
		} else if vector, err := uc.embedder.Embed(ctx, query.Query); err != nil {
			logger.Warn("failed to embed query, keyword-only search", "error", err)
			result.Degraded = true
		} else {
			semantic, err := uc.repo.Resource().SemanticSearch(ctx, vector, &interfaces.SemanticQuery{
				MatchCount:     limit,
				MatchThreshold: uc.settings.MatchThreshold,
				Tags:           tags,
				Categories:     categories,
			})
			switch {
			case errors.Is(err, interfaces.ErrSemanticSearchUnsupported):
				result.Degraded = true
			case err != nil:
				logger.Warn("semantic search failed, keyword-only search", "error", err)
				result.Degraded = true
			default:
				result.Resources = semantic
			}
		}
	}

	keyword, err := uc.repo.Resource().KeywordSearch(ctx, &interfaces.KeywordQuery{
		Terms:      searchTerms(query.Query),
		Tags:       tags,
		Categories: categories,
		Limit:      limit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run keyword search")
	}

	result.Resources = mergeResults(result.Resources, keyword, limit)

	if len(result.Resources) == 0 {
		return result, goerr.Wrap(ErrNoMatches, "empty fetch result", goerr.V("query", query.Query))
	}
	return result, nil
}

// mergeResults appends keyword hits behind semantic hits, dropping duplicates
func mergeResults(semantic, keyword []*model.Resource, limit int) []*model.Resource {
	seen := make(map[types.ResourceID]struct{}, len(semantic))
	merged := make([]*model.Resource, 0, limit)

	for _, lists := range [][]*model.Resource{semantic, keyword} {
		for _, resource := range lists {
			if _, ok := seen[resource.ID]; ok {
				continue
			}
			seen[resource.ID] = struct{}{}
			merged = append(merged, resource)
			if len(merged) >= limit {
				return merged
			}
		}
	}

	return merged
}
