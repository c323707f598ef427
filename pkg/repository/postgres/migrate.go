package postgres

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

const schemaTmpl = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS resources (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    categories TEXT NOT NULL DEFAULT '',
    embedding vector(%d),
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS resources_embedding_idx
    ON resources USING hnsw (embedding vector_cosine_ops);

CREATE INDEX IF NOT EXISTS resources_created_at_idx
    ON resources (created_at DESC);
`

const matchFnTmpl = `
CREATE OR REPLACE FUNCTION match_resources(
    query_embedding vector(%d),
    match_count int,
    match_threshold float,
    filter_tags text,
    filter_categories text
)
RETURNS TABLE (
    id uuid,
    title text,
    url text,
    notes text,
    tags text,
    categories text,
    created_at timestamptz,
    updated_at timestamptz,
    distance float
)
LANGUAGE sql STABLE
AS $$
    SELECT
        r.id,
        r.title,
        r.url,
        r.notes,
        r.tags,
        r.categories,
        r.created_at,
        r.updated_at,
        r.embedding <=> query_embedding AS distance
    FROM resources r
    WHERE r.embedding IS NOT NULL
        AND (filter_tags = '' OR r.tags = filter_tags)
        AND (filter_categories = '' OR r.categories = filter_categories)
        AND r.embedding <=> query_embedding <= match_threshold
    ORDER BY distance ASC
    LIMIT match_count
$$;
`

// Migrate creates the resources table, the vector index and the
// match_resources function. It is idempotent.
func (x *Client) Migrate(ctx context.Context) error {
	if _, err := x.pool.Exec(ctx, fmt.Sprintf(schemaTmpl, x.dim)); err != nil {
		return goerr.Wrap(err, "failed to create resources schema")
	}
	if _, err := x.pool.Exec(ctx, fmt.Sprintf(matchFnTmpl, x.dim)); err != nil {
		return goerr.Wrap(err, "failed to create match_resources function")
	}
	return nil
}
