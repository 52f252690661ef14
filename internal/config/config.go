package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/evallife/llm-playground/internal/types"
)

const (
	FrontendTView = "tview"
	FrontendTea   = "tea"
)

// ErrExists is returned by Save when the file is present and overwrite is off.
var ErrExists = errors.New("config file already exists")

// File is the on-disk startup configuration. It only seeds a session; edits
// made in the UI are not written back.
type File struct {
	Chat types.Config `koanf:"chat" yaml:"chat"`
	Log  LogConfig    `koanf:"log" yaml:"log"`
	UI   string       `koanf:"ui" yaml:"ui"`
}

type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
	File  string `koanf:"file" yaml:"file"`
}

func Default() *File {
	return &File{
		Chat: types.Config{
			EndpointURL:  "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-3.5-turbo",
			MaxTokens:    512,
			Temperature:  0.7,
			TopP:         1.0,
			SystemPrompt: "You are a helpful assistant.",
		},
		Log: LogConfig{Level: "info"},
		UI:  FrontendTView,
	}
}

func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".playground.yaml")
}

// Load overlays the YAML file at path on the defaults. A missing file yields
// the defaults.
func Load(path string) (*File, error) {
	k := koanf.New(".")
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.Chat = cfg.Chat.Clamped()
	return cfg, nil
}

func (f *File) Validate() error {
	switch f.UI {
	case FrontendTView, FrontendTea:
	default:
		return fmt.Errorf("invalid ui %q: must be %s or %s", f.UI, FrontendTView, FrontendTea)
	}
	return nil
}

// Save writes f as YAML. It refuses to replace an existing file unless
// overwrite is set.
func (f *File) Save(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}
	data, err := yamlv3.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
