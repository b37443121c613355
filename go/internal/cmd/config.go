package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the client-core configuration, loaded from a yaml file with
// environment overrides on top.
type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	Feed struct {
		Kind       string `yaml:"kind"` // "nats" or "websocket"
		NATSURL    string `yaml:"nats_url"`
		StreamName string `yaml:"stream_name"`
		WSURL      string `yaml:"ws_url"`
	} `yaml:"feed"`
	Time struct {
		Location string `yaml:"location"` // zone for zone-naive server timestamps
	} `yaml:"time"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.API.BaseURL = getEnv("TRADEEVER_API_URL", config.API.BaseURL)
	config.Feed.Kind = getEnv("TRADEEVER_FEED_KIND", config.Feed.Kind)
	config.Feed.NATSURL = getEnv("TRADEEVER_NATS_URL", config.Feed.NATSURL)
	config.Feed.StreamName = getEnv("TRADEEVER_FEED_STREAM", config.Feed.StreamName)
	config.Feed.WSURL = getEnv("TRADEEVER_FEED_WS_URL", config.Feed.WSURL)
	config.Time.Location = getEnv("TRADEEVER_TIME_LOCATION", config.Time.Location)

	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("api base url is required (TRADEEVER_API_URL)")
	}
	if config.Feed.Kind == "" {
		config.Feed.Kind = "nats"
	}
	return &config, nil
}

// location resolves the configured timestamp zone, falling back to local.
func (c *Config) location() (*time.Location, error) {
	if c.Time.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Time.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load time location %q: %w", c.Time.Location, err)
	}
	return loc, nil
}
