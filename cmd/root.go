package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evallife/llm-playground/internal/api"
	"github.com/evallife/llm-playground/internal/config"
	"github.com/evallife/llm-playground/internal/ui"
)

var (
	cfgFile  string
	frontend string
	logFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "playground",
	Short: "Terminal playground for OpenAI-compatible chat endpoints",
	Long: `playground is an interactive terminal client for any endpoint that speaks
the OpenAI chat-completion protocol. The endpoint, model, sampling
parameters and system prompt can all be changed mid-conversation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := config.NewLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		return run(cfg, logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.Path(), "config file path")
	rootCmd.Flags().StringVar(&frontend, "ui", "", "front end to use: tview or tea (overrides config)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

// loadConfig reads the config file and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.File, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("ui") {
		cfg.UI = frontend
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = logFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.File, logger *zap.Logger) error {
	client := api.NewClient(nil, logger)
	logger.Info("starting playground",
		zap.String("ui", cfg.UI),
		zap.String("endpoint", cfg.Chat.EndpointURL),
		zap.String("model", cfg.Chat.Model),
	)

	switch cfg.UI {
	case config.FrontendTea:
		p := tea.NewProgram(ui.NewModel(cfg.Chat, client, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running program: %w", err)
		}
		return nil
	default:
		if err := ui.NewTViewUI(cfg.Chat, client, logger).Run(); err != nil {
			return fmt.Errorf("running program: %w", err)
		}
		return nil
	}
}
