package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/david-macharia/isc-radius/client"
	"github.com/david-macharia/isc-radius/dictionary"
	"github.com/david-macharia/isc-radius/internal/config"
	"github.com/david-macharia/isc-radius/radius"
)

func requestCmd() *cobra.Command {
	var (
		code     string
		userName string
		password string
	)

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send a single request to the configured upstream servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd.Context(), code, userName, password)
		},
	}
	cmd.Flags().StringVar(&code, "code", "Access-Request", "request code (Access-Request or Accounting-Request; no response to any other code is accepted)")
	cmd.Flags().StringVar(&userName, "user", "", "User-Name attribute value")
	cmd.Flags().StringVar(&password, "password", "", "User-Password attribute value")
	return cmd
}

func runRequest(ctx context.Context, code, userName, password string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dict := dictionary.New()
	if cfg.Dictionary != "" {
		if err := dict.Load(cfg.Dictionary); err != nil {
			return fmt.Errorf("load dictionary: %w", err)
		}
	} else if err := dict.LoadDefault(); err != nil {
		return fmt.Errorf("load default dictionary: %w", err)
	}

	var servers []client.ServerConfig
	for _, entry := range cfg.Client.Servers {
		secret, err := decodeSecret(entry.Secret)
		if err != nil {
			return fmt.Errorf("server %s: %w", entry.Address, err)
		}
		servers = append(servers, client.ServerConfig{
			Address:  entry.Address,
			AuthPort: entry.AuthPort,
			AcctPort: entry.AcctPort,
			Secret:   secret,
		})
	}
	if len(servers) == 0 {
		return fmt.Errorf("no client.servers configured")
	}

	delay, err := time.ParseDuration(cfg.Client.Delay)
	if err != nil {
		delay = time.Second
	}

	c, err := client.New(dict, servers, client.WithRetry(cfg.Client.Retry), client.WithDelay(delay))
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	attrs := radius.NewAttributeList()
	if userName != "" {
		if err := attrs.AddValue(dict, "User-Name", userName); err != nil {
			return fmt.Errorf("add User-Name: %w", err)
		}
	}
	if password != "" {
		if err := attrs.AddValue(dict, "User-Password", password); err != nil {
			return fmt.Errorf("add User-Password: %w", err)
		}
	}

	resp, err := c.Request(ctx, code, attrs)
	if rejErr, ok := err.(*client.RejectError); ok {
		fmt.Printf("rejected: %s\n", rejErr.Response.Code())
		return nil
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	fmt.Printf("accepted: %s (id=%d)\n", resp.Code(), resp.Identifier())
	for _, a := range resp.Attributes().All() {
		fmt.Printf("  %s\n", a.String())
	}
	return nil
}
