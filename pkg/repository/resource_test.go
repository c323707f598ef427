package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/repository/memory"
	"github.com/secmon-lab/libris/pkg/repository/postgres"
)

func runResourceRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.ResourceRepository) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, &model.Resource{
			Title:      "Attention Is All You Need",
			URL:        "https://arxiv.org/abs/1706.03762",
			Notes:      "transformer paper",
			Tags:       "ai",
			Categories: "paper",
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID == "" {
			t.Fatal("Create did not assign an ID")
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Error("Create did not set timestamps")
		}

		retrieved, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if retrieved.Title != created.Title {
			t.Errorf("Title mismatch: got %v, want %v", retrieved.Title, created.Title)
		}
		if retrieved.URL != created.URL {
			t.Errorf("URL mismatch: got %v, want %v", retrieved.URL, created.URL)
		}
		if retrieved.Notes != created.Notes {
			t.Errorf("Notes mismatch: got %v, want %v", retrieved.Notes, created.Notes)
		}
		if retrieved.Tags != created.Tags {
			t.Errorf("Tags mismatch: got %v, want %v", retrieved.Tags, created.Tags)
		}
		if retrieved.Categories != created.Categories {
			t.Errorf("Categories mismatch: got %v, want %v", retrieved.Categories, created.Categories)
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Get(ctx, "0b7e43b2-13e7-4f05-ae17-cbc1ce8c60cc")
		if err == nil {
			t.Fatal("Expected error for non-existent resource, got nil")
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			t.Errorf("Expected NotFound error, got: %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, &model.Resource{
			Title: "Go blog",
			URL:   "https://go.dev/blog",
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		updated := created.Clone()
		updated.Notes = "official release notes and design posts"
		updated.Tags = "golang"

		result, err := repo.Update(ctx, updated)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if result.Notes != updated.Notes {
			t.Errorf("Notes mismatch: got %v, want %v", result.Notes, updated.Notes)
		}
		if result.Tags != updated.Tags {
			t.Errorf("Tags mismatch: got %v, want %v", result.Tags, updated.Tags)
		}
		if result.ID != created.ID {
			t.Errorf("ID changed on update: got %v, want %v", result.ID, created.ID)
		}
	})

	t.Run("Update not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Update(ctx, &model.Resource{
			ID:    "3f6f4f6e-98a1-4dd0-9e68-0f4c65a9c6a1",
			Title: "ghost",
		})
		if err == nil {
			t.Fatal("Expected error for non-existent resource, got nil")
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			t.Errorf("Expected NotFound error, got: %v", err)
		}
	})

	t.Run("FindByTitleOrURL", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if _, err := repo.Create(ctx, &model.Resource{
			Title: "pgvector docs",
			URL:   "https://github.com/pgvector/pgvector",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		byTitle, err := repo.FindByTitleOrURL(ctx, "pgvector docs", "")
		if err != nil {
			t.Fatalf("FindByTitleOrURL failed: %v", err)
		}
		if byTitle == nil {
			t.Fatal("Expected a match by title, got nil")
		}

		byURL, err := repo.FindByTitleOrURL(ctx, "no such title", "https://github.com/pgvector/pgvector")
		if err != nil {
			t.Fatalf("FindByTitleOrURL failed: %v", err)
		}
		if byURL == nil {
			t.Fatal("Expected a match by URL, got nil")
		}

		miss, err := repo.FindByTitleOrURL(ctx, "no such title", "https://example.com/missing")
		if err != nil {
			t.Fatalf("FindByTitleOrURL failed: %v", err)
		}
		if miss != nil {
			t.Errorf("Expected nil for no match, got %v", miss)
		}
	})

	t.Run("KeywordSearch", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		seeds := []*model.Resource{
			{Title: "Designing Data-Intensive Applications", Notes: "distributed systems book", Tags: "book", Categories: "reading"},
			{Title: "Raft paper", URL: "https://raft.github.io", Notes: "consensus algorithm", Tags: "paper", Categories: "reading"},
			{Title: "Sourdough starter guide", Notes: "kitchen experiments", Tags: "cooking", Categories: "hobby"},
		}
		for _, seed := range seeds {
			if _, err := repo.Create(ctx, seed); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		results, err := repo.KeywordSearch(ctx, &interfaces.KeywordQuery{
			Terms: []string{"consensus"},
			Limit: 10,
		})
		if err != nil {
			t.Fatalf("KeywordSearch failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("Expected 1 result, got %d", len(results))
		}
		if results[0].Title != "Raft paper" {
			t.Errorf("Unexpected result: %v", results[0].Title)
		}

		filtered, err := repo.KeywordSearch(ctx, &interfaces.KeywordQuery{
			Categories: "reading",
			Limit:      10,
		})
		if err != nil {
			t.Fatalf("KeywordSearch failed: %v", err)
		}
		if len(filtered) != 2 {
			t.Fatalf("Expected 2 results for category filter, got %d", len(filtered))
		}

		limited, err := repo.KeywordSearch(ctx, &interfaces.KeywordQuery{Limit: 2})
		if err != nil {
			t.Fatalf("KeywordSearch failed: %v", err)
		}
		if len(limited) != 2 {
			t.Fatalf("Expected limit to cap results at 2, got %d", len(limited))
		}
	})

	t.Run("KeywordSearch is case-insensitive", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if _, err := repo.Create(ctx, &model.Resource{
			Title: "PostgreSQL Performance Tuning",
			Tags:  "database",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		results, err := repo.KeywordSearch(ctx, &interfaces.KeywordQuery{
			Terms: []string{"postgresql"},
			Limit: 10,
		})
		if err != nil {
			t.Fatalf("KeywordSearch failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("Expected 1 result, got %d", len(results))
		}
	})

	t.Run("SemanticSearch ordering and threshold", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		near := make([]float32, model.EmbeddingDimension)
		far := make([]float32, model.EmbeddingDimension)
		query := make([]float32, model.EmbeddingDimension)
		near[0], near[1] = 1.0, 0.1
		far[1] = 1.0
		query[0] = 1.0

		if _, err := repo.Create(ctx, &model.Resource{Title: "near", Embedding: near}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := repo.Create(ctx, &model.Resource{Title: "far", Embedding: far}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := repo.Create(ctx, &model.Resource{Title: "no embedding"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		results, err := repo.SemanticSearch(ctx, query, &interfaces.SemanticQuery{
			MatchCount:     5,
			MatchThreshold: 2.0,
		})
		if err != nil {
			if errors.Is(err, interfaces.ErrSemanticSearchUnsupported) {
				t.Skip("backend has no vector search")
			}
			t.Fatalf("SemanticSearch failed: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("Expected 2 results, got %d", len(results))
		}
		if results[0].Title != "near" {
			t.Errorf("Expected nearest first, got %v", results[0].Title)
		}

		strict, err := repo.SemanticSearch(ctx, query, &interfaces.SemanticQuery{
			MatchCount:     5,
			MatchThreshold: 0.5,
		})
		if err != nil {
			t.Fatalf("SemanticSearch failed: %v", err)
		}
		if len(strict) != 1 {
			t.Fatalf("Expected threshold to cut the orthogonal vector, got %d results", len(strict))
		}
	})
}

func TestMemoryResourceRepository(t *testing.T) {
	runResourceRepositoryTest(t, func(t *testing.T) interfaces.ResourceRepository {
		return memory.New().Resource()
	})
}

func TestPostgresResourceRepository(t *testing.T) {
	runResourceRepositoryTest(t, func(t *testing.T) interfaces.ResourceRepository {
		t.Helper()

		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			t.Skip("TEST_POSTGRES_DSN not set")
		}

		ctx := context.Background()
		repo, err := postgres.New(ctx, dsn, model.EmbeddingDimension)
		if err != nil {
			t.Fatalf("failed to create postgres repository: %v", err)
		}
		if err := repo.Migrate(ctx); err != nil {
			t.Fatalf("failed to migrate postgres schema: %v", err)
		}

		// Each subtest assumes an empty table
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			t.Fatalf("failed to connect for cleanup: %v", err)
		}
		if _, err := pool.Exec(ctx, "TRUNCATE resources"); err != nil {
			t.Fatalf("failed to truncate resources: %v", err)
		}
		pool.Close()

		t.Cleanup(func() {
			if err := repo.Close(); err != nil {
				t.Errorf("failed to close postgres repository: %v", err)
			}
		})

		return repo
	})
}
