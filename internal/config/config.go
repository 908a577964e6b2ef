package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Store     StoreConfig     `yaml:"store"`
	Planner   PlannerConfig   `yaml:"planner"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the server speaks to clients: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// StoreConfig selects the session store backend: "fs" or "sqlite".
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Root    string `yaml:"root"`
	DBPath  string `yaml:"db_path"`
}

type PlannerConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Store: StoreConfig{
			Backend: "fs",
			Root:    "data",
			DBPath:  "scaffolder.db",
		},
		Planner: PlannerConfig{
			Timeout: 60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("SCAFFOLDER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("SCAFFOLDER_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SCAFFOLDER_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCAFFOLDER_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("SCAFFOLDER_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if backend := os.Getenv("SCAFFOLDER_STORE_BACKEND"); backend != "" {
		cfg.Store.Backend = backend
	}
	if root := os.Getenv("SCAFFOLDER_STORE_ROOT"); root != "" {
		cfg.Store.Root = root
	}
	if dbPath := os.Getenv("SCAFFOLDER_STORE_DB_PATH"); dbPath != "" {
		cfg.Store.DBPath = dbPath
	}
	if timeoutStr := os.Getenv("SCAFFOLDER_PLANNER_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCAFFOLDER_PLANNER_TIMEOUT: %w", err)
		}
		cfg.Planner.Timeout = timeout
	}
	if level := os.Getenv("SCAFFOLDER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q, expected stdio or http", c.Transport.Mode)
	}
	switch c.Store.Backend {
	case "fs", "sqlite":
	default:
		return fmt.Errorf("invalid store backend %q, expected fs or sqlite", c.Store.Backend)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
