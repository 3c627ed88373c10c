// Package config loads radiusd configuration from a YAML file layered
// under environment variable overrides, using koanf/v2. Only the CLI
// boundary depends on this package; the server and client packages
// themselves take plain Go structs.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the complete radiusd configuration.
type Config struct {
	Dictionary string         `koanf:"dictionary"`
	Log        LogConfig      `koanf:"log"`
	Server     ServerConfig   `koanf:"server"`
	Client     ClientConfig   `koanf:"client"`
	Metrics    MetricsConfig  `koanf:"metrics"`
}

// LogConfig controls the zap logger built by the serve subcommand; the
// request subcommand does not read it.
type LogConfig struct {
	Level string `koanf:"level"`
}

// MetricsConfig holds the address for a Prometheus metrics endpoint.
// radiusd does not read it; no metrics HTTP endpoint is started.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// ServerConfig is the radiusd serve subcommand's configuration.
type ServerConfig struct {
	AuthPort int                `koanf:"auth_port"`
	AcctPort int                `koanf:"acct_port"`
	Clients  []ServerClientEntry `koanf:"clients"`
}

// ServerClientEntry binds a source IP to its shared secret in the server's
// client registry.
type ServerClientEntry struct {
	IP     string `koanf:"ip"`
	Secret string `koanf:"secret"`
}

// ClientConfig is the radiusd request subcommand's configuration.
type ClientConfig struct {
	Retry   int                  `koanf:"retry"`
	Delay   string               `koanf:"delay"`
	Servers []ClientServerEntry `koanf:"servers"`
}

// ClientServerEntry describes one upstream server the client may contact.
type ClientServerEntry struct {
	Address  string `koanf:"address"`
	AuthPort int    `koanf:"auth_port"`
	AcctPort int    `koanf:"acct_port"`
	Secret   string `koanf:"secret"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Dictionary: "",
		Log:        LogConfig{Level: "info"},
		Server:     ServerConfig{AuthPort: 1812, AcctPort: 1813},
		Client:     ClientConfig{Retry: 3, Delay: "1s"},
		Metrics:    MetricsConfig{Addr: ":9812"},
	}
}

// envPrefix is the environment variable prefix for radiusd configuration.
// Variables are named RADIUSD_<section>_<key>, e.g. RADIUSD_LOG_LEVEL.
// See envKeyMapper for keys that themselves contain an underscore.
const envPrefix = "RADIUSD_"

// Load reads configuration from a YAML file at path, overlaid with
// RADIUSD_-prefixed environment variable overrides, merged on top of
// DefaultConfig(). A path of "" skips the file provider and uses defaults
// plus environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k, DefaultConfig()); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// envKeyMapper transforms RADIUSD_LOG_LEVEL -> log.level. Every
// underscore becomes a dot, so RADIUSD_SERVER_AUTH_PORT maps to
// server.auth.port, not server.auth_port: keys containing an underscore
// (auth_port, acct_port) cannot be overridden from the environment.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", ".")
}

func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"dictionary":        defaults.Dictionary,
		"log.level":         defaults.Log.Level,
		"server.auth_port":  defaults.Server.AuthPort,
		"server.acct_port":  defaults.Server.AcctPort,
		"client.retry":      defaults.Client.Retry,
		"client.delay":      defaults.Client.Delay,
		"metrics.addr":      defaults.Metrics.Addr,
	}
	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}
	return nil
}
