package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauern/block-manager/internal/api"
	"github.com/klauern/block-manager/internal/auth"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(versionInfo VersionInfo) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the settings and allowed-blocks HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "Address to listen on (default from config)"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			if listen := cmd.String("listen"); listen != "" {
				a.cfg.Server.Listen = listen
			}
			return serve(ctx, a, versionInfo)
		}),
	}
}

func serve(ctx context.Context, a *app, versionInfo VersionInfo) error {
	for _, name := range a.cfg.DefaultSecrets() {
		a.log.Warn("using the built-in secret; set it in config.toml or the environment", zap.String("setting", name))
	}

	tokens := auth.NewTokenService([]byte(a.cfg.Auth.SigningKey), a.cfg.Auth.Issuer, a.cfg.Auth.TokenTTL)
	nonces := auth.NewNonceService(a.cfg.Auth.NonceKey, a.cfg.Auth.NonceLifetime)
	handler := api.NewHandler(a.mgr, a.store, tokens, nonces, a.log, api.Options{
		Version:      versionInfo.Version,
		MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
		ContentTypes: a.cfg.ContentTypes,
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Listen,
		Handler:      api.WithDefaults(api.NewRouter(handler), a.log),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("listening", zap.String("addr", srv.Addr), zap.String("store", a.cfg.Store.DSN))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("stopped")
	return nil
}
