package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/service/embedding"
	"github.com/secmon-lab/libris/pkg/utils/logging"
)

// Store saves a resource extracted from one user turn. An existing record with
// the same title or URL is patched in place; only fields the classifier
// actually extracted overwrite the stored values. Returns the stored record
// and whether an existing one was updated.
func (uc *UseCases) Store(ctx context.Context, input model.ResourceInput, rawMessage string) (*model.Resource, bool, error) {
	title := input.Title
	if title == "" {
		if input.URL == "" && strings.TrimSpace(rawMessage) == "" {
			return nil, false, goerr.Wrap(ErrTitleRequired, "cannot derive a title")
		}
		title = model.DeriveTitle(input.URL, rawMessage)
	}

	notes := input.Notes
	if notes == "" && input.URL == "" {
		notes = strings.TrimSpace(rawMessage)
	}

	tags := model.FirstValue(input.Tags)
	categories := model.FirstValue(input.Categories)

	existing, err := uc.repo.Resource().FindByTitleOrURL(ctx, title, input.URL)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to look up existing resource")
	}

	if existing != nil {
		patched := existing.Clone()
		if input.Title != "" {
			patched.Title = input.Title
		}
		if input.URL != "" {
			patched.URL = input.URL
		}
		if input.Notes != "" {
			patched.Notes = input.Notes
		}
		if tags != "" {
			patched.Tags = tags
		}
		if categories != "" {
			patched.Categories = categories
		}
		uc.embedResource(ctx, patched)

		updated, err := uc.repo.Resource().Update(ctx, patched)
		if err != nil {
			return nil, false, goerr.Wrap(err, "failed to update resource", goerr.V("id", patched.ID))
		}
		return updated, true, nil
	}

	resource := &model.Resource{
		Title:      title,
		URL:        input.URL,
		Notes:      notes,
		Tags:       tags,
		Categories: categories,
	}
	uc.embedResource(ctx, resource)

	created, err := uc.repo.Resource().Create(ctx, resource)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to create resource", goerr.V("title", title))
	}
	return created, false, nil
}

// embedResource attaches an embedding to the resource. Provider failures are
// logged and the resource is stored without a vector; keyword search still
// covers it.
func (uc *UseCases) embedResource(ctx context.Context, resource *model.Resource) {
	if uc.embedder == nil {
		return
	}

	text := embedding.ComposeText(resource)
	if text == "" {
		return
	}

	vector, err := uc.embedder.Embed(ctx, text)
	if err != nil {
		logging.From(ctx).Warn("failed to generate embedding, storing without vector",
			"error", err, "title", resource.Title)
		resource.Embedding = nil
		return
	}

	resource.Embedding = vector
}
