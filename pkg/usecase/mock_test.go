package usecase_test

import (
	"context"
	"sync"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/libris/pkg/service/slack"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

var _ gollem.Session = &mockLLMSession{}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{"This is a test response."},
	}, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn        func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.generateEmbeddingFn != nil {
		return c.generateEmbeddingFn(ctx, dimension, input)
	}
	return nil, nil
}

// classifierClient returns the same classifier output for every session
func classifierClient(jsonText string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{jsonText}}, nil
				},
			}, nil
		},
	}
}

type postedMessage struct {
	Target string
	Text   string
}

// mockSlackService records posted messages and DMs
type mockSlackService struct {
	mu       sync.Mutex
	messages []postedMessage
	dms      []postedMessage

	getUserInfoFn func(ctx context.Context, userID string) (*slack.User, error)
}

var _ slack.Service = &mockSlackService{}

func (m *mockSlackService) BotUserID(ctx context.Context) (string, error) {
	return "UBOT001", nil
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, postedMessage{Target: channelID, Text: text})
	return nil
}

func (m *mockSlackService) PostDM(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dms = append(m.dms, postedMessage{Target: userID, Text: text})
	return nil
}

func (m *mockSlackService) GetUserInfo(ctx context.Context, userID string) (*slack.User, error) {
	if m.getUserInfoFn != nil {
		return m.getUserInfoFn(ctx, userID)
	}
	return &slack.User{
		ID:          userID,
		Name:        "someone",
		DisplayName: "Some One",
	}, nil
}

func (m *mockSlackService) postedMessages() []postedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]postedMessage(nil), m.messages...)
}

func (m *mockSlackService) postedDMs() []postedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]postedMessage(nil), m.dms...)
}
