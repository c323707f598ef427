package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
)

// Client is a Firestore pairing backend. Pairing state must survive restarts,
// so the pending queue and the allowlist live in Firestore collections.
type Client struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.PairingRepository = &Client{}

type Option func(*Client)

func WithCollectionPrefix(prefix string) Option {
	return func(c *Client) {
		c.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	c := &Client{client: client}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (x *Client) collection(name string) *firestore.CollectionRef {
	return x.client.Collection(x.collectionPrefix + name)
}

func (x *Client) Close() error {
	if x.client != nil {
		return x.client.Close()
	}
	return nil
}
