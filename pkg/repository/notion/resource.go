package notion

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

// queryPageCap bounds how many pages a full database scan will walk
const queryPageCap = 1000

func isNotFound(err error) bool {
	var apiErr *notionapi.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (x *Client) Create(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	page, err := x.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: x.dbID,
		},
		Properties: toProperties(resource),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create page", goerr.V("title", resource.Title))
	}

	return fromPage(page), nil
}

func (x *Client) Update(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	page, err := x.api.Page.Update(ctx, notionapi.PageID(resource.ID), &notionapi.PageUpdateRequest{
		Properties: toProperties(resource),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "resource not found", goerr.V("id", resource.ID))
		}
		return nil, goerr.Wrap(err, "failed to update page", goerr.V("id", resource.ID))
	}

	return fromPage(page), nil
}

func (x *Client) Get(ctx context.Context, id types.ResourceID) (*model.Resource, error) {
	page, err := x.api.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "resource not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get page", goerr.V("id", id))
	}

	return fromPage(page), nil
}

// titleOrURLFilter matches pages whose title equals title, or whose URL
// property equals url when one is given.
func titleOrURLFilter(title, url string) notionapi.OrCompoundFilter {
	filters := notionapi.OrCompoundFilter{
		notionapi.PropertyFilter{
			Property: propTitle,
			RichText: &notionapi.TextFilterCondition{Equals: title},
		},
	}
	if url != "" {
		filters = append(filters, notionapi.PropertyFilter{
			Property: propURL,
			RichText: &notionapi.TextFilterCondition{Equals: url},
		})
	}
	return filters
}

func (x *Client) FindByTitleOrURL(ctx context.Context, title, url string) (*model.Resource, error) {
	resp, err := x.api.Database.Query(ctx, x.dbID, &notionapi.DatabaseQueryRequest{
		Filter: titleOrURLFilter(title, url),
		Sorts: []notionapi.SortObject{
			{Timestamp: notionapi.TimestampCreated, Direction: notionapi.SortOrderDESC},
		},
		PageSize: 1,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query database", goerr.V("title", title), goerr.V("url", url))
	}

	if len(resp.Results) == 0 {
		return nil, nil
	}
	return fromPage(&resp.Results[0]), nil
}

func (x *Client) SemanticSearch(ctx context.Context, embedding []float32, query *interfaces.SemanticQuery) ([]*model.Resource, error) {
	return nil, goerr.Wrap(interfaces.ErrSemanticSearchUnsupported, "notion backend has no vector storage")
}

// KeywordSearch walks the database newest-first and matches substrings on the
// client side. The Notion filter API cannot express a case-insensitive
// contains across five properties at once.
func (x *Client) KeywordSearch(ctx context.Context, query *interfaces.KeywordQuery) ([]*model.Resource, error) {
	var (
		results []*model.Resource
		cursor  notionapi.Cursor
		walked  int
	)

	for {
		resp, err := x.api.Database.Query(ctx, x.dbID, &notionapi.DatabaseQueryRequest{
			Sorts: []notionapi.SortObject{
				{Timestamp: notionapi.TimestampCreated, Direction: notionapi.SortOrderDESC},
			},
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query database")
		}

		for i := range resp.Results {
			resource := fromPage(&resp.Results[i])
			walked++
			if !matchesKeywordQuery(resource, query) {
				continue
			}
			results = append(results, resource)
			if query.Limit > 0 && len(results) >= query.Limit {
				return results, nil
			}
		}

		if !resp.HasMore || walked >= queryPageCap {
			break
		}
		cursor = resp.NextCursor
	}

	return results, nil
}

func matchesKeywordQuery(resource *model.Resource, query *interfaces.KeywordQuery) bool {
	if query.Tags != "" && !containsFold(resource.Tags, query.Tags) {
		return false
	}
	if query.Categories != "" && !containsFold(resource.Categories, query.Categories) {
		return false
	}
	if len(query.Terms) == 0 {
		return true
	}

	fields := []string{resource.Title, resource.URL, resource.Notes, resource.Tags, resource.Categories}
	for _, term := range query.Terms {
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
