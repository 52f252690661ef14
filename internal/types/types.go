package types

import (
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Range limits enforced on the sampling parameters.
const (
	MinMaxTokens   = 0
	MaxMaxTokens   = 4096
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinTopP        = 0.0
	MaxTopP        = 1.0
)

type Config struct {
	EndpointURL  string  `koanf:"endpoint_url" yaml:"endpoint_url"`
	APIKey       string  `koanf:"api_key" yaml:"api_key"`
	Model        string  `koanf:"model" yaml:"model"`
	MaxTokens    int     `koanf:"max_tokens" yaml:"max_tokens"`
	Temperature  float64 `koanf:"temperature" yaml:"temperature"`
	TopP         float64 `koanf:"top_p" yaml:"top_p"`
	SystemPrompt string  `koanf:"system_prompt" yaml:"system_prompt"`
}

// Clamped returns a copy of c with the sampling parameters forced into range.
func (c Config) Clamped() Config {
	c.MaxTokens = clampInt(c.MaxTokens, MinMaxTokens, MaxMaxTokens)
	c.Temperature = clampFloat(c.Temperature, MinTemperature, MaxTemperature)
	c.TopP = clampFloat(c.TopP, MinTopP, MaxTopP)
	return c
}

// MaskedAPIKey is safe to show on screen.
// A blank key is reported as absent, matching the transport, which sends no
// Authorization header for it.
func (c Config) MaskedAPIKey() string {
	key := []rune(strings.TrimSpace(c.APIKey))
	if len(key) == 0 {
		return "(none)"
	}
	if len(key) <= 8 {
		return "********"
	}
	return string(key[:3]) + "..." + string(key[len(key)-4:])
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type Role string

const (
	RoleSystem    Role = openai.ChatMessageRoleSystem
	RoleUser      Role = openai.ChatMessageRoleUser
	RoleAssistant Role = openai.ChatMessageRoleAssistant
)

// DisplayName is the label shown above a message in the transcript.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "YOU"
	case RoleAssistant:
		return "ASSISTANT"
	case RoleSystem:
		return "SYSTEM"
	default:
		return string(r)
	}
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type SystemPrompt struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}
