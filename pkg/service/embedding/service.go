package embedding

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/libris/pkg/domain/model"
)

// Service generates embedding vectors for resources and queries
type Service struct {
	llmClient gollem.LLMClient
	dimension int
}

// New creates an embedding service. dimension is the vector size expected by
// the resource store.
func New(llmClient gollem.LLMClient, dimension int) (*Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	if dimension <= 0 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", dimension))
	}

	return &Service{
		llmClient: llmClient,
		dimension: dimension,
	}, nil
}

// ComposeText builds the text that gets embedded for a resource. Title, notes
// and tags carry the semantic content; the URL is noise for similarity.
func ComposeText(resource *model.Resource) string {
	parts := make([]string, 0, 3)
	if resource.Title != "" {
		parts = append(parts, resource.Title)
	}
	if resource.Notes != "" {
		parts = append(parts, resource.Notes)
	}
	if resource.Tags != "" {
		parts = append(parts, resource.Tags)
	}
	return strings.Join(parts, "\n")
}

// Embed generates an embedding for the given text. Vectors with an unexpected
// dimension are rejected rather than written to the store.
func (x *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.New("cannot embed empty text")
	}

	embeddings, err := x.llmClient.GenerateEmbedding(ctx, x.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, goerr.New("no embedding returned")
	}
	if len(embeddings[0]) != x.dimension {
		return nil, goerr.New("embedding dimension mismatch",
			goerr.V("expected", x.dimension), goerr.V("actual", len(embeddings[0])))
	}

	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result, nil
}
