package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ewastelocator/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or write the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to config.toml",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveConfig(cfg, configInfo.Path); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), configInfo.Path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config and data directory locations",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "config: %s\ndata:   %s\n", configInfo.Path, config.ResolveDataDir(cfg))
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configPathCmd)
}
