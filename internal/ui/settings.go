package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evallife/llm-playground/internal/types"
)

// Settings field order shared by both front ends.
const (
	fieldEndpoint = iota
	fieldAPIKey
	fieldModel
	fieldMaxTokens
	fieldTemperature
	fieldTopP
	fieldSystemPrompt
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Endpoint URL",
	"API Key",
	"Model",
	"max_tokens (0-4096)",
	"temperature (0.0-2.0)",
	"top_p (0.0-1.0)",
	"System Prompt",
}

type settingsValues [fieldCount]string

func settingsFromConfig(cfg types.Config) settingsValues {
	var v settingsValues
	v[fieldEndpoint] = cfg.EndpointURL
	v[fieldAPIKey] = cfg.APIKey
	v[fieldModel] = cfg.Model
	v[fieldMaxTokens] = strconv.Itoa(cfg.MaxTokens)
	v[fieldTemperature] = strconv.FormatFloat(cfg.Temperature, 'f', -1, 64)
	v[fieldTopP] = strconv.FormatFloat(cfg.TopP, 'f', -1, 64)
	v[fieldSystemPrompt] = cfg.SystemPrompt
	return v
}

// parseSettings turns form text into a Config. Numbers outside their range
// are clamped rather than rejected, like a slider would.
func parseSettings(v settingsValues) (types.Config, error) {
	cfg := types.Config{
		EndpointURL:  strings.TrimSpace(v[fieldEndpoint]),
		APIKey:       v[fieldAPIKey],
		Model:        strings.TrimSpace(v[fieldModel]),
		SystemPrompt: v[fieldSystemPrompt],
	}
	if cfg.EndpointURL == "" {
		return types.Config{}, fmt.Errorf("endpoint URL is required")
	}

	var err error
	if cfg.MaxTokens, err = strconv.Atoi(strings.TrimSpace(v[fieldMaxTokens])); err != nil {
		return types.Config{}, fmt.Errorf("max_tokens: %q is not an integer", v[fieldMaxTokens])
	}
	if cfg.Temperature, err = strconv.ParseFloat(strings.TrimSpace(v[fieldTemperature]), 64); err != nil {
		return types.Config{}, fmt.Errorf("temperature: %q is not a number", v[fieldTemperature])
	}
	if cfg.TopP, err = strconv.ParseFloat(strings.TrimSpace(v[fieldTopP]), 64); err != nil {
		return types.Config{}, fmt.Errorf("top_p: %q is not a number", v[fieldTopP])
	}
	return cfg.Clamped(), nil
}
