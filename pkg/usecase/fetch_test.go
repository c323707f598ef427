package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/repository/memory"
	"github.com/secmon-lab/libris/pkg/usecase"
)

func axisEmbedding(axis int) []float32 {
	vec := make([]float32, model.EmbeddingDimension)
	vec[axis] = 1.0
	return vec
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("semantic results come first, keyword hits dedupe behind", func(t *testing.T) {
		repo := memory.New()

		near, err := repo.Resource().Create(ctx, &model.Resource{
			Title:     "vector databases overview",
			Notes:     "pgvector, similarity search",
			Embedding: axisEmbedding(0),
		})
		gt.NoError(t, err).Required()

		keywordOnly, err := repo.Resource().Create(ctx, &model.Resource{
			Title: "databases for beginners",
			Notes: "no vector here",
		})
		gt.NoError(t, err).Required()

		llm := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				vec := make([]float64, model.EmbeddingDimension)
				vec[0] = 1.0
				return [][]float64{vec}, nil
			},
		}
		uc := usecase.New(repo, llm, usecase.WithEmbedding(testEmbedder(t, llm)))

		result, err := uc.Fetch(ctx, model.ResourceQuery{Query: "databases"})
		gt.NoError(t, err).Required()

		gt.Value(t, result.Degraded).Equal(false)
		gt.Array(t, result.Resources).Length(2)
		gt.Value(t, result.Resources[0].ID).Equal(near.ID)
		gt.Value(t, result.Resources[1].ID).Equal(keywordOnly.ID)
	})

	t.Run("no embedder means degraded keyword-only search", func(t *testing.T) {
		repo := memory.New()

		_, err := repo.Resource().Create(ctx, &model.Resource{
			Title: "keyword target article",
		})
		gt.NoError(t, err).Required()

		uc := usecase.New(repo, &mockLLMClient{})

		result, err := uc.Fetch(ctx, model.ResourceQuery{Query: "keyword target"})
		gt.NoError(t, err).Required()

		gt.Value(t, result.Degraded).Equal(true)
		gt.Array(t, result.Resources).Length(1)
	})

	t.Run("tag-only browse without embedder is not degraded", func(t *testing.T) {
		repo := memory.New()

		_, err := repo.Resource().Create(ctx, &model.Resource{Title: "tagged piece", Tags: "golang"})
		gt.NoError(t, err).Required()

		uc := usecase.New(repo, &mockLLMClient{})

		result, err := uc.Fetch(ctx, model.ResourceQuery{Tags: "golang"})
		gt.NoError(t, err).Required()

		gt.Value(t, result.Degraded).Equal(false)
		gt.Array(t, result.Resources).Length(1)
	})

	t.Run("embedding failure degrades instead of failing", func(t *testing.T) {
		repo := memory.New()

		_, err := repo.Resource().Create(ctx, &model.Resource{
			Title: "resilient article",
		})
		gt.NoError(t, err).Required()

		llm := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return nil, errors.New("provider down")
			},
		}
		uc := usecase.New(repo, llm, usecase.WithEmbedding(testEmbedder(t, llm)))

		result, err := uc.Fetch(ctx, model.ResourceQuery{Query: "resilient"})
		gt.NoError(t, err).Required()

		gt.Value(t, result.Degraded).Equal(true)
		gt.Array(t, result.Resources).Length(1)
	})

	t.Run("variant expansion matches plural and hyphen forms", func(t *testing.T) {
		repo := memory.New()

		_, err := repo.Resource().Create(ctx, &model.Resource{
			Title: "intro to machine-learning",
		})
		gt.NoError(t, err).Required()

		uc := usecase.New(repo, &mockLLMClient{})

		result, err := uc.Fetch(ctx, model.ResourceQuery{Query: "machine learning articles"})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Resources).Length(1)
	})

	t.Run("limit is coerced", func(t *testing.T) {
		repo := memory.New()
		for i := 0; i < 10; i++ {
			_, err := repo.Resource().Create(ctx, &model.Resource{
				Title: "common topic " + string(rune('a'+i)),
			})
			gt.NoError(t, err).Required()
		}

		uc := usecase.New(repo, &mockLLMClient{})

		// Unspecified limit falls back to the default of 5
		result, err := uc.Fetch(ctx, model.ResourceQuery{Query: "common topic"})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Resources).Length(5)

		// Explicit limit is honored
		result, err = uc.Fetch(ctx, model.ResourceQuery{Query: "common topic", Limit: 3})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Resources).Length(3)
	})

	t.Run("tag filter narrows results", func(t *testing.T) {
		repo := memory.New()

		_, err := repo.Resource().Create(ctx, &model.Resource{Title: "tagged piece", Tags: "golang"})
		gt.NoError(t, err).Required()
		_, err = repo.Resource().Create(ctx, &model.Resource{Title: "other piece", Tags: "rust"})
		gt.NoError(t, err).Required()

		uc := usecase.New(repo, &mockLLMClient{})

		result, err := uc.Fetch(ctx, model.ResourceQuery{Query: "piece", Tags: "golang"})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Resources).Length(1)
		gt.Value(t, result.Resources[0].Tags).Equal("golang")
	})

	t.Run("zero matches returns ErrNoMatches", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, &mockLLMClient{})

		result, err := uc.Fetch(ctx, model.ResourceQuery{Query: "nothing stored yet"})
		gt.Value(t, errors.Is(err, usecase.ErrNoMatches)).Equal(true)
		gt.Array(t, result.Resources).Length(0)
	})
}
