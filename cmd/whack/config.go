package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-whack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration a round would use, after the config search path
and flag overrides, as YAML. Redirect it to a file to start customizing:

  whack config > ~/.arcade/configs/whack.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg.File())
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
