package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

// ErrSemanticSearchUnsupported is returned by backends without vector search
// (e.g. Notion). Callers degrade to keyword-only mode.
var ErrSemanticSearchUnsupported = goerr.New("semantic search is not supported by this backend")

// SemanticQuery holds the parameters of a vector similarity search
type SemanticQuery struct {
	// MatchCount limits the number of returned rows
	MatchCount int
	// MatchThreshold is the maximum cosine distance; rows further away are cut
	MatchThreshold float64
	// Tags filters by exact tag value when non-empty
	Tags string
	// Categories filters by exact category value when non-empty
	Categories string
}

// KeywordQuery holds the parameters of a substring fallback search
type KeywordQuery struct {
	// Terms are matched as case-insensitive substrings over title, url,
	// notes, tags and categories. A record matches if any term matches.
	Terms []string
	// Tags filters by substring match on the tag value when non-empty
	Tags string
	// Categories filters by substring match on the category value when non-empty
	Categories string
	// Limit caps the number of returned rows
	Limit int
}

// ResourceRepository defines the interface for resource persistence
type ResourceRepository interface {
	// Create inserts a new resource, generating an ID if absent
	Create(ctx context.Context, resource *model.Resource) (*model.Resource, error)

	// Update overwrites an existing resource by ID
	Update(ctx context.Context, resource *model.Resource) (*model.Resource, error)

	// Get retrieves a resource by ID
	Get(ctx context.Context, id types.ResourceID) (*model.Resource, error)

	// FindByTitleOrURL returns the most recent resource whose title matches
	// exactly, or whose URL matches exactly when url is non-empty. Returns
	// nil without error when nothing matches.
	FindByTitleOrURL(ctx context.Context, title, url string) (*model.Resource, error)

	// SemanticSearch returns resources ordered by ascending cosine distance
	// to the query embedding. Backends without vector support return
	// ErrSemanticSearchUnsupported.
	SemanticSearch(ctx context.Context, embedding []float32, query *SemanticQuery) ([]*model.Resource, error)

	// KeywordSearch returns resources matching the substring terms and
	// filters. Ordering is backend-defined (typically newest first).
	KeywordSearch(ctx context.Context, query *KeywordQuery) ([]*model.Resource, error)
}
