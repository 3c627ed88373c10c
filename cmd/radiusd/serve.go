package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/david-macharia/isc-radius/dictionary"
	"github.com/david-macharia/isc-radius/internal/config"
	"github.com/david-macharia/isc-radius/internal/metrics"
	"github.com/david-macharia/isc-radius/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the auth and accounting UDP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	dict := dictionary.New()
	if cfg.Dictionary != "" {
		if err := dict.Load(cfg.Dictionary); err != nil {
			logger.Fatal("failed to load dictionary", zap.Error(err))
		}
	} else if err := dict.LoadDefault(); err != nil {
		logger.Fatal("failed to load default dictionary", zap.Error(err))
	}

	opts := []server.Option{
		server.WithAuthPort(cfg.Server.AuthPort),
		server.WithAcctPort(cfg.Server.AcctPort),
		server.WithLogger(logger),
		server.WithMetrics(metrics.New(nil)),
	}
	for _, entry := range cfg.Server.Clients {
		secret, err := decodeSecret(entry.Secret)
		if err != nil {
			return fmt.Errorf("client %s: %w", entry.IP, err)
		}
		opts = append(opts, server.WithClient(entry.IP, secret))
	}

	s, err := server.New(dict, opts...)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("radiusd serving",
		zap.Int("auth_port", cfg.Server.AuthPort),
		zap.Int("acct_port", cfg.Server.AcctPort),
	)
	return s.ListenAndServe(runCtx)
}

// decodeSecret treats a "hex:" prefixed secret as hex-encoded bytes and
// everything else as a literal UTF-8 shared secret.
func decodeSecret(s string) ([]byte, error) {
	const hexPrefix = "hex:"
	if len(s) > len(hexPrefix) && s[:len(hexPrefix)] == hexPrefix {
		return hex.DecodeString(s[len(hexPrefix):])
	}
	return []byte(s), nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
