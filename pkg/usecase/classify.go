package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/utils/logging"
)

// classifierResponse is the JSON shape the classifier session is asked for
type classifierResponse struct {
	Intent     string   `json:"intent"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Notes      string   `json:"notes"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
	Query      string   `json:"query"`
	Limit      int      `json:"limit"`
}

const classifierSystemPrompt = `You are the request parser of a resource librarian bot.
Classify the user's message and extract structured fields.

## Instructions:

1. Set intent to one of:
   - "store" when the user wants to save, add or remember a resource (a link, article, book, tool, note).
   - "fetch" when the user wants to find, retrieve, search or get recommendations from their saved resources.
   - "chat" for anything else (greetings, questions, small talk).
2. For store requests extract title, url, notes, tags and categories when present in the message. Leave fields you cannot extract empty.
3. For fetch requests extract the search query, tag and category filters, and the number of results the user asked for (limit). Leave limit 0 when unspecified.
4. Tags and categories are short lowercase labels.
5. Do not invent information that is not in the message.`

func (uc *UseCases) buildClassifierSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ParsedRequest",
		Description: "Classification of one user message",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"intent": {
				Type:        gollem.TypeString,
				Description: "One of: " + intentLabels(),
				Required:    true,
			},
			"title": {
				Type:        gollem.TypeString,
				Description: "Title of the resource to store, empty if absent",
			},
			"url": {
				Type:        gollem.TypeString,
				Description: "URL of the resource to store, empty if absent",
			},
			"notes": {
				Type:        gollem.TypeString,
				Description: "Free text notes about the resource, empty if absent",
			},
			"tags": {
				Type:        gollem.TypeArray,
				Description: "Short lowercase tags",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
			"categories": {
				Type:        gollem.TypeArray,
				Description: "Short lowercase categories",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
			"query": {
				Type:        gollem.TypeString,
				Description: "Search query for fetch requests, empty otherwise",
			},
			"limit": {
				Type:        gollem.TypeInteger,
				Description: "Requested number of results, 0 when unspecified",
			},
		},
	}
}

func intentLabels() string {
	labels := make([]string, 0, len(types.AllIntents()))
	for _, intent := range types.AllIntents() {
		labels = append(labels, intent.String())
	}
	return strings.Join(labels, ", ")
}

// Classify parses one user turn into an intent and extracted fields. Provider
// failures and unparseable output degrade to the chat intent instead of
// failing the turn.
func (uc *UseCases) Classify(ctx context.Context, message string) *model.ParsedRequest {
	logger := logging.From(ctx)

	chat := &model.ParsedRequest{Intent: types.IntentChat}

	if uc.llmClient == nil {
		logger.Warn("no LLM client configured, degrading to chat")
		return chat
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(uc.buildClassifierSchema()),
		gollem.WithSessionSystemPrompt(classifierSystemPrompt),
	)
	if err != nil {
		logger.Warn("failed to create classifier session, degrading to chat", "error", err)
		return chat
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(message))
	if err != nil {
		logger.Warn("classifier generation failed, degrading to chat", "error", err)
		return chat
	}
	if len(resp.Texts) == 0 {
		logger.Warn("classifier returned no output, degrading to chat")
		return chat
	}

	parsed, err := parseClassifierResponse(resp.Texts[0])
	if err != nil {
		logger.Warn("failed to parse classifier output, degrading to chat",
			"error", err, "output", resp.Texts[0])
		return chat
	}

	return parsed
}

// parseClassifierResponse decodes the classifier JSON. When the provider
// wraps the object in prose or code fences, the substring between the first
// "{" and the last "}" is salvaged before giving up.
func parseClassifierResponse(text string) (*model.ParsedRequest, error) {
	var resp classifierResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, err
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
			return nil, err
		}
	}

	return &model.ParsedRequest{
		Intent: types.NormalizeIntent(resp.Intent),
		Resource: model.ResourceInput{
			Title:      strings.TrimSpace(resp.Title),
			URL:        strings.TrimSpace(resp.URL),
			Notes:      strings.TrimSpace(resp.Notes),
			Tags:       model.FirstValue(strings.Join(resp.Tags, ",")),
			Categories: model.FirstValue(strings.Join(resp.Categories, ",")),
		},
		Query: model.ResourceQuery{
			Query:      strings.TrimSpace(resp.Query),
			Tags:       model.FirstValue(strings.Join(resp.Tags, ",")),
			Categories: model.FirstValue(strings.Join(resp.Categories, ",")),
			Limit:      resp.Limit,
		},
	}, nil
}
