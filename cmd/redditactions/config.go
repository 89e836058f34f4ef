package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"redditactions/pkg/auth"
	"redditactions/pkg/config"
	"redditactions/pkg/processor"
	"redditactions/pkg/ui"
)

const defaultConfigPath = ".redditactions.yaml"

func newConfigCmd(opts *options, out io.Writer, exitCode *int) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage redditactions configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with the defaults",
		Long: `Create a configuration file holding every option at its default value.

The file is created as '.redditactions.yaml' in the current directory
unless a different path is given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			*exitCode = runConfigInit(opts.configFile, ui.NewPrinter(out))
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Show the effective configuration after merging all sources, followed
by the credentials found in the environment with secrets masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			*exitCode = runConfigShow(opts.configFile, out, ui.NewPrinter(out))
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

func runConfigInit(path string, printer *ui.Printer) int {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		printer.Error("Configuration file already exists", path)
		return processor.ExitFatal
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		printer.Error("Failed to create configuration file", err)
		return processor.ExitFatal
	}

	printer.Success("Configuration file created: " + path)
	printer.Info("Credentials", "set "+auth.EnvRedditClientID+", "+auth.EnvRedditClientSecret+", "+
		auth.EnvRedditUsername+", "+auth.EnvRedditPassword+", "+auth.EnvInstapaperUser+" and "+
		auth.EnvInstapaperPass+" in the environment or a .env file")
	return processor.ExitOK
}

func runConfigShow(path string, out io.Writer, printer *ui.Printer) int {
	cfg, err := config.Load(path, nil)
	if err != nil {
		printer.Error("Failed to load configuration", err)
		return processor.ExitFatal
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		printer.Error("Failed to format configuration", err)
		return processor.ExitFatal
	}

	printer.Highlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))
	fmt.Fprintln(out)

	printer.Highlight("Credentials")
	creds, err := auth.LoadFromEnv()
	if err != nil {
		printer.Warning("Incomplete", err)
		return processor.ExitOK
	}
	masked := creds.Sanitize()
	printer.Info("Reddit client id", masked.Reddit.ClientID)
	printer.Info("Reddit client secret", masked.Reddit.ClientSecret)
	printer.Info("Reddit username", masked.Reddit.Username)
	printer.Info("Reddit password", masked.Reddit.Password)
	printer.Info("Instapaper user", masked.Instapaper.Username)
	printer.Info("Instapaper password", masked.Instapaper.Password)
	return processor.ExitOK
}
