package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ewastelocator/internal/api"
	"ewastelocator/internal/app"
	"ewastelocator/internal/catalog"
	"ewastelocator/internal/config"
	"ewastelocator/internal/server"
	"ewastelocator/internal/session"
	"ewastelocator/internal/util"
)

var (
	port         int
	devMode      bool
	noBrowser    bool
	webDir       string
	secureCookie bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "开发模式")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "不自动打开浏览器")
	cmd.Flags().StringVar(&webDir, "web-dir", "", "开发模式下的前端目录")
	cmd.Flags().BoolVar(&secureCookie, "secure-cookie", false, "会话 cookie 仅通过 HTTPS 发送")
}

func runServe(cmd *cobra.Command) error {
	// 命令行参数覆盖配置
	if port > 0 && !configInfo.PortSpecified {
		cfg.Server.Port = port
	}
	if devMode {
		cfg.Server.DevMode = true
	}

	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logger.Info("data dir", zap.String("path", dir))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(dir)
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := openCatalog(ctx, dir)
	if err != nil {
		return err
	}

	ctrl := app.NewController(cat, st, st, controllerOptions(), logger.Named("app"))
	ttl := cfg.Session.TTL.Duration
	if ttl <= 0 {
		ttl = config.DefaultConfig().Session.TTL.Duration
	}
	sessions := session.NewStore(ttl)
	handler := api.NewHandler(ctrl, cat, sessions, st, logger.Named("api"))
	handler.SetSecureCookies(secureCookie)

	srv := server.NewServer(handler, server.Options{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		DevMode: cfg.Server.DevMode,
		WebDir:  webDir,
	}, logger.Named("http"))

	var watcher *catalog.Watcher
	if cfg.Catalog.Watch {
		watcher, err = catalog.NewWatcher(cat, logger.Named("watcher"))
		switch {
		case errors.Is(err, catalog.ErrNotWatchable):
			logger.Info("catalog watch skipped", zap.String("source", cat.Source().String()))
		case err != nil:
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	if cfg.Server.OpenBrowser && !cfg.Server.DevMode && !noBrowser {
		logger.Info("opening browser", zap.String("url", url))
		if err := util.OpenBrowserWithFallback(url); err != nil {
			logger.Warn("无法自动打开浏览器，请手动访问", zap.String("url", url), zap.Error(err))
		}
	} else {
		logger.Info("server ready", zap.String("url", url))
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
