package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evallife/llm-playground/internal/config"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the startup configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Writes the default settings to the config file so they can be edited before the next start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Default().Save(cfgFile, forceInit); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created default config at: %s\n", cfgFile)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective startup configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		c := cfg.Chat
		fmt.Fprintf(cmd.OutOrStdout(), "endpoint_url:  %s\napi_key:       %s\nmodel:         %s\nmax_tokens:    %d\ntemperature:   %g\ntop_p:         %g\nsystem_prompt: %s\nui:            %s\n",
			c.EndpointURL, c.MaskedAPIKey(), c.Model, c.MaxTokens, c.Temperature, c.TopP, c.SystemPrompt, cfg.UI)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
