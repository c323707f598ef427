package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
)

// Client is a Postgres resource backend using pgvector for similarity search
type Client struct {
	pool *pgxpool.Pool
	dim  int
}

var _ interfaces.ResourceRepository = &Client{}

// New connects to Postgres and registers the pgvector types. dim is the
// embedding dimension the schema is declared with.
func New(ctx context.Context, dsn string, dim int) (*Client, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse postgres DSN")
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create postgres connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}

	return &Client{pool: pool, dim: dim}, nil
}

func (x *Client) Close() error {
	x.pool.Close()
	return nil
}
