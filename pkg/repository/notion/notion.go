package notion

import (
	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
)

// Client is a Notion resource backend. Each resource is a page in a single
// database with Title, URL, Notes, Tags and Categories properties. Notion
// cannot store embeddings, so semantic search is unsupported and callers
// degrade to keyword-only mode.
type Client struct {
	api  *notionapi.Client
	dbID notionapi.DatabaseID
}

var _ interfaces.ResourceRepository = &Client{}

// New creates a Notion resource backend for the given database
func New(token, databaseID string) (*Client, error) {
	if token == "" {
		return nil, goerr.New("Notion API token is required")
	}
	if databaseID == "" {
		return nil, goerr.New("Notion database ID is required")
	}

	return &Client{
		api: notionapi.NewClient(
			notionapi.Token(token),
			notionapi.WithRetry(3), // Retry on rate limit (HTTP 429)
		),
		dbID: notionapi.DatabaseID(databaseID),
	}, nil
}

func (x *Client) Close() error {
	return nil
}
