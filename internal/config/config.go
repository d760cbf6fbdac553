// Package config loads topicflow settings with koanf.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Environment variables use the TOPICFLOW_ prefix with "__" separating sections,
// e.g. TOPICFLOW_STORE__DRIVER=redis or TOPICFLOW_VALIDATION__DISABLED_RULES=a,b.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "topicflow.yaml"

const envPrefix = "TOPICFLOW_"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration.
type Config struct {
	Log        LogConfig        `koanf:"log"`
	Store      StoreConfig      `koanf:"store"`
	Redis      RedisConfig      `koanf:"redis"`
	Render     RenderConfig     `koanf:"render"`
	HTTP       HTTPConfig       `koanf:"http"`
	Validation ValidationConfig `koanf:"validation"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type StoreConfig struct {
	Driver string `koanf:"driver"`
	// Path is the directory for the file driver and the database file for sqlite.
	Path string `koanf:"path"`
	// DSN is the postgres connection string.
	DSN string `koanf:"dsn"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
	// Lock enables distributed locking of instrument keys through Redis.
	Lock    bool          `koanf:"lock"`
	LockTTL time.Duration `koanf:"lock_ttl"`
}

type RenderConfig struct {
	URL         string `koanf:"url"`
	DiagramType string `koanf:"diagram_type"`
	Format      string `koanf:"format"`
	CacheSize   int    `koanf:"cache_size"`
}

type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type ValidationConfig struct {
	DisabledRules []string `koanf:"disabled_rules"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":                 "info",
		"log.format":                "text",
		"store.driver":              DriverFile,
		"store.path":                ".topicflow",
		"redis.addr":                "localhost:6379",
		"redis.prefix":              "topicflow:",
		"redis.lock_ttl":            "30s",
		"render.url":                "https://kroki.io",
		"render.diagram_type":       "mermaid",
		"render.format":             "svg",
		"render.cache_size":         1,
		"http.addr":                 ":8080",
		"http.shutdown_timeout":     "10s",
		"validation.disabled_rules": []string{},
	}
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"store":        "store.driver",
	"store-path":   "store.path",
	"dsn":          "store.dsn",
	"redis-addr":   "redis.addr",
	"redis-lock":   "redis.lock",
	"renderer-url": "render.url",
	"disable-rule": "validation.disabled_rules",
}

// Load reads configuration. cfgFile may be empty, in which case DefaultFile is used if present.
// flags may be nil; only flags that were explicitly set override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: TOPICFLOW_STORE__DRIVER -> store.driver
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if key == "validation.disabled_rules" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverPostgres && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the postgres driver")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Render.CacheSize < 0 {
		return fmt.Errorf("render.cache_size must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
