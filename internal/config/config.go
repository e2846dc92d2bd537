package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	HTTP     HTTPConfig     `yaml:"http"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Feed     FeedConfig     `yaml:"feed"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DispatchConfig struct {
	// DefaultZone is the hub label that acts as a wildcard in zone
	// matching: hub riders serve anywhere and any rider serves hub orders.
	DefaultZone string `yaml:"default_zone"`

	// MaxConcurrent bounds the parallel per-rider notification writes.
	MaxConcurrent int `yaml:"max_concurrent"`
}

type FeedConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if cfg.Database.Host == "" {
		return nil, fmt.Errorf("config: database.host is required")
	}
	if cfg.RabbitMQ.Host == "" {
		return nil, fmt.Errorf("config: rabbitmq.host is required")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.Dispatch.DefaultZone == "" {
		c.Dispatch.DefaultZone = "Dhaka"
	}
	if c.Dispatch.MaxConcurrent <= 0 {
		c.Dispatch.MaxConcurrent = 8
	}
	if c.Feed.PollIntervalSeconds <= 0 {
		c.Feed.PollIntervalSeconds = 10
	}
}
