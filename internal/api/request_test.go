package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evallife/llm-playground/internal/types"
)

func testConfig() types.Config {
	return types.Config{
		EndpointURL:  "http://localhost/v1/chat/completions",
		Model:        "gpt-3.5-turbo",
		MaxTokens:    512,
		Temperature:  0.7,
		TopP:         1.0,
		SystemPrompt: "You are a helpful assistant.",
	}
}

func TestBuildRequestPrependsSystemPrompt(t *testing.T) {
	history := []types.Message{
		{Role: types.RoleUser, Content: "Hello"},
		{Role: types.RoleAssistant, Content: "Hi there!"},
		{Role: types.RoleUser, Content: "How are you?"},
	}

	req := BuildRequest(testConfig(), history)

	require.Len(t, req.Messages, 4)
	assert.Equal(t, types.Message{Role: types.RoleSystem, Content: "You are a helpful assistant."}, req.Messages[0])
	assert.Equal(t, history, req.Messages[1:])
	assert.Equal(t, "gpt-3.5-turbo", req.Model)
	assert.Equal(t, 512, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 1.0, req.TopP)
	assert.False(t, req.Stream)
}

func TestBuildRequestDoesNotTouchHistory(t *testing.T) {
	history := make([]types.Message, 1, 8)
	history[0] = types.Message{Role: types.RoleUser, Content: "q"}

	_ = BuildRequest(testConfig(), history)

	assert.Equal(t, []types.Message{{Role: types.RoleUser, Content: "q"}}, history)
	assert.Equal(t, types.Message{}, history[:2][1], "spare capacity must stay untouched")
}

func TestBuildRequestUsesCurrentSystemPrompt(t *testing.T) {
	history := []types.Message{
		{Role: types.RoleUser, Content: "first"},
		{Role: types.RoleAssistant, Content: "answer"},
	}
	cfg := testConfig()
	first := BuildRequest(cfg, history)

	cfg.SystemPrompt = "Answer like a pirate."
	second := BuildRequest(cfg, history)

	assert.Equal(t, "You are a helpful assistant.", first.Messages[0].Content)
	assert.Equal(t, "Answer like a pirate.", second.Messages[0].Content)
	assert.Equal(t, first.Messages[1:], second.Messages[1:])
}

func TestBuildRequestEmptyHistory(t *testing.T) {
	req := BuildRequest(testConfig(), nil)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, types.RoleSystem, req.Messages[0].Role)
}

func TestChatRequestWireShape(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTokens = 0
	cfg.SystemPrompt = ""
	req := BuildRequest(cfg, []types.Message{{Role: types.RoleUser, Content: "Hello"}})

	data, err := json.Marshal(req)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"model": "gpt-3.5-turbo",
		"messages": [
			{"role": "system", "content": ""},
			{"role": "user", "content": "Hello"}
		],
		"max_tokens": 0,
		"temperature": 0.7,
		"top_p": 1,
		"stream": false
	}`, string(data))
}
