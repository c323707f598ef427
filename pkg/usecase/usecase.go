package usecase

import (
	"sync"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
	"github.com/secmon-lab/libris/pkg/service/embedding"
	"github.com/secmon-lab/libris/pkg/service/slack"
)

type UseCases struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
	embedder  *embedding.Service
	slackSvc  slack.Service
	settings  model.Settings
	adminID   types.UserID
	nowFn     func() time.Time

	chatMu       sync.Mutex
	chatSessions map[types.UserID]gollem.Session
}

type Option func(*UseCases)

// WithEmbedding enables vector search. Without it fetch runs keyword-only.
func WithEmbedding(svc *embedding.Service) Option {
	return func(uc *UseCases) {
		uc.embedder = svc
	}
}

// WithSlackService wires the chat transport used for replies and admin DMs
func WithSlackService(svc slack.Service) Option {
	return func(uc *UseCases) {
		uc.slackSvc = svc
	}
}

// WithSettings overrides the default tunables
func WithSettings(settings model.Settings) Option {
	return func(uc *UseCases) {
		uc.settings = settings
	}
}

// WithAdminUserID sets the user allowed to approve and reject pairing requests
func WithAdminUserID(userID types.UserID) Option {
	return func(uc *UseCases) {
		uc.adminID = userID
	}
}

// WithNow injects a clock for tests
func WithNow(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.nowFn = now
	}
}

func New(repo interfaces.Repository, llmClient gollem.LLMClient, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		llmClient:    llmClient,
		settings:     model.DefaultSettings(),
		nowFn:        time.Now,
		chatSessions: make(map[types.UserID]gollem.Session),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *UseCases) now() time.Time {
	return uc.nowFn().UTC()
}
