package ui

import "github.com/evallife/llm-playground/internal/types"

func Presets() []types.SystemPrompt {
	return []types.SystemPrompt{
		{ID: "assistant", Name: "Helpful Assistant", Content: "You are a helpful assistant."},
		{ID: "empty", Name: "No Instructions", Content: ""},
		{ID: "translator", Name: "Translator (ZH-EN)", Content: "You are a professional translator. Translate between Chinese and English."},
		{ID: "coder", Name: "Code Expert", Content: "You are an expert software engineer. Provide concise and accurate code solutions."},
	}
}
