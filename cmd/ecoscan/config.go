package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"ecoscan/internal/config"
	"ecoscan/internal/paths"
)

var (
	configFormat    string
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ecoscan configuration",
	Long:  "View and manage ecoscan configuration stored in .ecoscan/config.toml",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, the config file and
ECOSCAN_* environment overrides are applied. The API token is never shown.

Examples:
  ecoscan config show              # TOML, as the file would be written
  ecoscan config show --format json`,
	Run: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Run:   runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format (toml, json, yaml)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(mustGetRepoRoot())

	output, err := formatConfig(cfg, configFormat)
	if err != nil {
		exitWithError(err)
	}
	fmt.Println(output)
}

// formatConfig renders cfg without its API token.
func formatConfig(cfg *config.Config, format string) (string, error) {
	redacted := *cfg
	redacted.Dataset.Token = ""

	if format == "toml" {
		data, err := toml.Marshal(redacted)
		if err != nil {
			return "", fmt.Errorf("failed to encode config: %w", err)
		}
		return string(data), nil
	}

	f, err := parseFormat(format)
	if err != nil || f == FormatHuman {
		return "", fmt.Errorf("unsupported format: %s", format)
	}
	return FormatResponse(&redacted, f)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()

	path := paths.ConfigPath(repoRoot)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		fmt.Fprintf(os.Stderr, "Config already exists at %s (use --force to overwrite)\n", path)
		os.Exit(1)
	}

	written, err := config.DefaultConfig().Save(repoRoot)
	if err != nil {
		exitWithError(err)
	}
	fmt.Printf("Wrote %s\n", written)
}
