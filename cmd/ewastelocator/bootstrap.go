package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"ewastelocator/internal/app"
	"ewastelocator/internal/catalog"
	"ewastelocator/internal/config"
	"ewastelocator/internal/mapview"
	"ewastelocator/internal/store"
)

// openCatalog 创建并加载回收中心目录；加载失败时目录为空
func openCatalog(ctx context.Context, dataDir string) (*catalog.Catalog, error) {
	client := &http.Client{Timeout: cfg.Catalog.FetchTimeout.Duration}
	src, err := catalog.NewSource(config.CatalogLocation(cfg, dataDir), client)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(src, logger.Named("catalog"))
	cat.Load(ctx)
	return cat, nil
}

func openStore(dataDir string) (*store.Store, error) {
	st, err := store.Open(cfg.Storage.Driver, config.StorageDSN(cfg, dataDir))
	if err != nil {
		return nil, fmt.Errorf("open storage (%s): %w", cfg.Storage.Driver, err)
	}
	logger.Info("storage opened", zap.String("driver", st.Driver()))
	return st, nil
}

func controllerOptions() app.Options {
	opts := app.DefaultOptions()
	if cfg.Session.LoginURL != "" {
		opts.LoginURL = cfg.Session.LoginURL
	}
	opts.DefaultView = mapview.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng}
	if cfg.Map.Zoom > 0 {
		opts.DefaultZoom = cfg.Map.Zoom
	}
	if cfg.Map.LocationZoom > 0 {
		opts.LocationZoom = cfg.Map.LocationZoom
	}
	if cfg.Map.Padding > 0 {
		opts.Padding = mapview.Padding{X: cfg.Map.Padding, Y: cfg.Map.Padding}
	}
	return opts
}
