package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ewastelocator/internal/config"
	"ewastelocator/internal/logging"
)

var (
	// 全局参数
	configPath string
	dataDir    string
	verbose    bool

	cfg        *config.AppConfig
	configInfo config.LoadConfigInfo
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ewastelocator",
	Short: "E-waste recycling center locator",
	Long: `ewastelocator serves a map of e-waste recycling centers with search,
"use my location" and pickup requests stored in a per-user folder.

Run without a subcommand to start the web server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, configInfo, err = config.LoadConfigWithInfo(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configInfo.Path, err)
		}
		if dataDir != "" {
			cfg.Data.DataDir = dataDir
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Log.Dev)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config.toml 路径（默认在可执行文件目录）")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")

	addServeFlags(rootCmd)
	addServeFlags(serveCmd)

	rootCmd.AddCommand(serveCmd, searchCmd, exportCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
