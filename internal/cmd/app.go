package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauern/block-manager/internal/config"
	"github.com/klauern/block-manager/internal/manager"
	"github.com/klauern/block-manager/internal/registry"
	"github.com/klauern/block-manager/internal/store"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app is the set of collaborators every command works with.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    store.Store
	registry *registry.Registry
	mgr      *manager.Manager
	out      io.Writer

	closeLog func()
}

// loadConfig reads the config file named by --config and applies the root flag
// overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	root := cmd.Root()
	cfg, err := config.Load(root.String("config"))
	if err != nil {
		return nil, err
	}
	if dsn := root.String("dsn"); dsn != "" {
		cfg.Store.DSN = dsn
	}
	if catalog := root.String("catalog"); catalog != "" {
		cfg.Registry.CatalogFile = catalog
	}
	if root.Bool("transitive") {
		cfg.Hierarchy.Transitive = true
	}
	return cfg, nil
}

// openApp builds the logger, store, registry and manager. Callers must Close it.
func openApp(cmd *cli.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := config.NewLogger(cfg.Log, cmd.Root().Bool("debug"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	reg, err := registry.LoadFile(cfg.Registry.CatalogFile)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to load block catalog: %w", err)
	}

	st, err := store.Open(cfg.Store.DSN)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to open option store: %w", err)
	}

	logger.Debug("application ready",
		zap.String("store", cfg.Store.DSN),
		zap.Int("blocks", reg.Len()),
		zap.Bool("transitive", cfg.Hierarchy.Transitive),
	)

	return &app{
		cfg:      cfg,
		log:      logger,
		store:    st,
		registry: reg,
		mgr: manager.New(manager.Config{
			Store:      st,
			Registry:   reg,
			Logger:     logger,
			Transitive: cfg.Hierarchy.Transitive,
		}),
		out:      cmd.Root().Writer,
		closeLog: closeLog,
	}, nil
}

func (a *app) Close() error {
	err := a.store.Close()
	a.closeLog()
	return err
}

// withApp runs fn with an open app and closes it afterwards.
func withApp(fn func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		runErr := fn(ctx, cmd, a)
		if closeErr := a.Close(); closeErr != nil {
			return errors.Join(runErr, fmt.Errorf("failed to close option store: %w", closeErr))
		}
		return runErr
	}
}
