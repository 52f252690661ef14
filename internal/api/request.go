package api

import (
	"github.com/evallife/llm-playground/internal/types"
)

// ChatRequest is the chat-completion request body. Field order matches the
// wire layout and no field is omitted, so max_tokens 0 and stream false are
// always sent.
type ChatRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	TopP        float64         `json:"top_p"`
	Stream      bool            `json:"stream"`
}

// BuildRequest frames the whole history with the current system prompt.
// The system message is synthesized on every call and never written back
// to the history, so editing the prompt re-frames earlier turns too.
func BuildRequest(cfg types.Config, history []types.Message) ChatRequest {
	messages := make([]types.Message, 0, len(history)+1)
	messages = append(messages, types.Message{
		Role:    types.RoleSystem,
		Content: cfg.SystemPrompt,
	})
	messages = append(messages, history...)

	return ChatRequest{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		Stream:      false,
	}
}
