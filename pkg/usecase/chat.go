package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

const chatSystemPrompt = `You are a friendly resource librarian assistant.
You help users save links, articles, books and tools, and find them again later.
Answer briefly and conversationally. When the user seems to want to save or
search for something, remind them they can just ask you to save or find it.`

// Chat answers a conversational turn. Each user keeps a session in memory so
// follow-up turns have context until the process restarts.
func (uc *UseCases) Chat(ctx context.Context, userID types.UserID, message string) (string, error) {
	session, err := uc.chatSession(ctx, userID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat session", goerr.V("userID", userID))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(message))
	if err != nil {
		// Drop the session so the next turn starts fresh
		uc.dropChatSession(userID)
		return "", goerr.Wrap(err, "failed to generate chat response", goerr.V("userID", userID))
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("chat response was empty", goerr.V("userID", userID))
	}

	return resp.Texts[0], nil
}

func (uc *UseCases) chatSession(ctx context.Context, userID types.UserID) (gollem.Session, error) {
	uc.chatMu.Lock()
	defer uc.chatMu.Unlock()

	if session, ok := uc.chatSessions[userID]; ok {
		return session, nil
	}

	if uc.llmClient == nil {
		return nil, goerr.New("LLM client is not configured")
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(chatSystemPrompt),
	)
	if err != nil {
		return nil, err
	}

	uc.chatSessions[userID] = session
	return session, nil
}

func (uc *UseCases) dropChatSession(userID types.UserID) {
	uc.chatMu.Lock()
	defer uc.chatMu.Unlock()
	delete(uc.chatSessions, userID)
}
