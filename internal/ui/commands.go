package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evallife/llm-playground/internal/session"
)

const helpText = `Commands:
/clear  - Clear the conversation
/config - Show current configuration
/help   - Show this help`

func isCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// runCommand executes a slash command and returns the notice to show and
// whether the conversation was cleared. Commands never reach the conversation.
func runCommand(ctrl *session.Controller, input string) (string, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return helpText, false
	}

	switch parts[0] {
	case "/clear":
		if err := ctrl.Clear(); err != nil {
			return busyNotice(err), false
		}
		return "Conversation cleared.", true
	case "/config":
		return describeConfig(ctrl), false
	case "/help":
		return helpText, false
	default:
		return fmt.Sprintf("Unknown command: %s. Type /help for list.", parts[0]), false
	}
}

func describeConfig(ctrl *session.Controller) string {
	cfg := ctrl.Config()
	return fmt.Sprintf("Current Config:\n- Endpoint: %s\n- API Key: %s\n- Model: %s\n- max_tokens: %d\n- temperature: %g\n- top_p: %g\n- System Prompt: %s",
		cfg.EndpointURL, cfg.MaskedAPIKey(), cfg.Model, cfg.MaxTokens, cfg.Temperature, cfg.TopP, cfg.SystemPrompt)
}

func busyNotice(err error) string {
	if errors.Is(err, session.ErrBusy) {
		return "Still waiting for the current reply."
	}
	return err.Error()
}
