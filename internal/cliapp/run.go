package cliapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wudi/faasrun/internal/config"
	"github.com/wudi/faasrun/internal/dispatch"
	"github.com/wudi/faasrun/internal/logging"
	"github.com/wudi/faasrun/internal/project"
	"github.com/wudi/faasrun/internal/reload"
	"github.com/wudi/faasrun/internal/router"
	"github.com/wudi/faasrun/internal/tenant"
)

func newRunCmd() *cobra.Command {
	var port uint16

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build, serve, and hot-reload the current directory's project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), int(port))
		},
	}
	cmd.Flags().Uint16VarP(&port, "port", "p", 3000, "port to listen on")
	return cmd
}

func runServer(ctx context.Context, port int) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(filepath.Join(dir, "config.yml"))
	if err != nil {
		return err
	}
	buildDir := cfg.Build.Dir
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(dir, buildDir)
	}
	result, err := project.Build(dir, buildDir)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Config{
		Project:    cfg.Name,
		Level:      cfg.Logging.Level,
		Output:     cfg.Logging.Output,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	logging.SetGlobal(logger)

	sr, err := router.NewSwappableRouter(result.Code, cfg.RouterEntries())
	if err != nil {
		return err
	}

	registry := tenant.NewRegistry()
	registry.Register(cfg.Host, sr)

	watcher, err := reload.NewWatcher(dir, buildDir, sr, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	handler := dispatch.New(registry, logger)
	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{Addr: addr, Handler: handler}

	logger.Info("listening", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
