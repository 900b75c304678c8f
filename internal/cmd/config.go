package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration. Every value has an
// environment or built-in fallback so the file can be omitted entirely.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	Outbox struct {
		PollInterval time.Duration `yaml:"poll_interval"`
		BatchSize    int           `yaml:"batch_size"`
	} `yaml:"outbox"`
}

func loadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

func (c *Config) serverPort() string {
	if c.Server.Port != "" {
		return c.Server.Port
	}
	return getEnv("PORT", "8080")
}

func (c *Config) natsURL() string {
	if c.NATS.URL != "" {
		return c.NATS.URL
	}
	return getEnv("NATS_URL", "nats://localhost:4222")
}

func (c *Config) outboxPollInterval() time.Duration {
	if c.Outbox.PollInterval > 0 {
		return c.Outbox.PollInterval
	}
	return time.Duration(getEnvAsInt("OUTBOX_POLL_MS", 2000)) * time.Millisecond
}

func (c *Config) outboxBatchSize() int {
	if c.Outbox.BatchSize > 0 {
		return c.Outbox.BatchSize
	}
	return getEnvAsInt("OUTBOX_BATCH_SIZE", 100)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
