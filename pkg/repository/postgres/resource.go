package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pgvector/pgvector-go"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

const resourceColumns = "id, title, url, notes, tags, categories, embedding, created_at, updated_at"

func scanResource(row pgx.Row) (*model.Resource, error) {
	var (
		resource model.Resource
		id       string
		emb      *pgvector.Vector
	)
	if err := row.Scan(&id, &resource.Title, &resource.URL, &resource.Notes,
		&resource.Tags, &resource.Categories, &emb,
		&resource.CreatedAt, &resource.UpdatedAt); err != nil {
		return nil, err
	}
	resource.ID = types.ResourceID(id)
	if emb != nil {
		resource.Embedding = emb.Slice()
	}
	return &resource, nil
}

func embeddingValue(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

func (x *Client) Create(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	created := resource.Clone()
	if created.ID == "" {
		created.ID = types.NewResourceID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := x.pool.Exec(ctx, `
		INSERT INTO resources (id, title, url, notes, tags, categories, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(created.ID), created.Title, created.URL, created.Notes,
		created.Tags, created.Categories, embeddingValue(created.Embedding),
		created.CreatedAt, created.UpdatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert resource", goerr.V("id", created.ID))
	}

	return created, nil
}

func (x *Client) Update(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	updated := resource.Clone()
	updated.UpdatedAt = time.Now().UTC()

	tag, err := x.pool.Exec(ctx, `
		UPDATE resources
		SET title = $2, url = $3, notes = $4, tags = $5, categories = $6,
			embedding = $7, updated_at = $8
		WHERE id = $1`,
		string(updated.ID), updated.Title, updated.URL, updated.Notes,
		updated.Tags, updated.Categories, embeddingValue(updated.Embedding),
		updated.UpdatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update resource", goerr.V("id", updated.ID))
	}
	if tag.RowsAffected() == 0 {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "resource not found", goerr.V("id", updated.ID))
	}

	return x.Get(ctx, updated.ID)
}

func (x *Client) Get(ctx context.Context, id types.ResourceID) (*model.Resource, error) {
	row := x.pool.QueryRow(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE id = $1", string(id))

	resource, err := scanResource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "resource not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get resource", goerr.V("id", id))
	}

	return resource, nil
}

func (x *Client) FindByTitleOrURL(ctx context.Context, title, url string) (*model.Resource, error) {
	row := x.pool.QueryRow(ctx, `
		SELECT `+resourceColumns+`
		FROM resources
		WHERE title = $1 OR ($2 <> '' AND url = $2)
		ORDER BY created_at DESC
		LIMIT 1`, title, url)

	resource, err := scanResource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to find resource", goerr.V("title", title), goerr.V("url", url))
	}

	return resource, nil
}

func (x *Client) SemanticSearch(ctx context.Context, embedding []float32, query *interfaces.SemanticQuery) ([]*model.Resource, error) {
	rows, err := x.pool.Query(ctx, `
		SELECT id, title, url, notes, tags, categories, created_at, updated_at, distance
		FROM match_resources($1, $2, $3, $4, $5)`,
		pgvector.NewVector(embedding), query.MatchCount, query.MatchThreshold,
		query.Tags, query.Categories)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run semantic search")
	}
	defer rows.Close()

	var results []*model.Resource
	for rows.Next() {
		var (
			resource model.Resource
			id       string
			distance float64
		)
		if err := rows.Scan(&id, &resource.Title, &resource.URL, &resource.Notes,
			&resource.Tags, &resource.Categories,
			&resource.CreatedAt, &resource.UpdatedAt, &distance); err != nil {
			return nil, goerr.Wrap(err, "failed to scan semantic search row")
		}
		resource.ID = types.ResourceID(id)
		results = append(results, &resource)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate semantic search rows")
	}

	return results, nil
}

func (x *Client) KeywordSearch(ctx context.Context, query *interfaces.KeywordQuery) ([]*model.Resource, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(query.Terms) > 0 {
		patterns := make([]string, 0, len(query.Terms))
		for _, term := range query.Terms {
			patterns = append(patterns, "%"+escapeLike(term)+"%")
		}
		p := arg(patterns)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE ANY(%s) OR url ILIKE ANY(%s) OR notes ILIKE ANY(%s) OR tags ILIKE ANY(%s) OR categories ILIKE ANY(%s))",
			p, p, p, p, p))
	}
	if query.Tags != "" {
		conds = append(conds, fmt.Sprintf("tags ILIKE %s", arg("%"+escapeLike(query.Tags)+"%")))
	}
	if query.Categories != "" {
		conds = append(conds, fmt.Sprintf("categories ILIKE %s", arg("%"+escapeLike(query.Categories)+"%")))
	}

	sql := "SELECT " + resourceColumns + " FROM resources"
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY created_at DESC"
	if query.Limit > 0 {
		sql += " LIMIT " + arg(query.Limit)
	}

	rows, err := x.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run keyword search")
	}
	defer rows.Close()

	var results []*model.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan keyword search row")
		}
		results = append(results, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate keyword search rows")
	}

	return results, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
