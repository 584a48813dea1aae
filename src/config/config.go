package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file. A PORT
// environment variable, when set, overrides the configured port.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Deployment platforms inject the port via the environment
	if portEnv := os.Getenv("PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value '%s': %w", portEnv, err)
		}
		config.Port = port
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 4033
	}
	if c.Feed.IntervalSeconds == 0 {
		c.Feed.IntervalSeconds = 301
	}
	if c.Feed.CountdownSeconds == 0 {
		c.Feed.CountdownSeconds = 10
	}
	if c.RPC.RequestTimeout == 0 {
		c.RPC.RequestTimeout = 30
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d", c.Port)
	}

	// Validate RPC configuration
	if c.RPC.Endpoint == "" {
		return fmt.Errorf("rpc endpoint cannot be empty")
	}
	if c.RPC.PriceFeed == "" {
		return fmt.Errorf("price feed contract address cannot be empty")
	}
	if c.RPC.Token == "" {
		return fmt.Errorf("token address cannot be empty")
	}
	if c.RPC.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	// Validate feed timing
	if c.Feed.IntervalSeconds <= 0 {
		return fmt.Errorf("fetch interval must be greater than 0")
	}
	if c.Feed.CountdownSeconds <= 0 {
		return fmt.Errorf("countdown tick must be greater than 0")
	}

	// Validate Ledger configuration
	if c.Ledger.CredentialsFile == "" {
		return fmt.Errorf("ledger credentials file cannot be empty")
	}

	// Validate Storage configuration (journal is optional)
	switch c.Storage.DBType {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database type: %s", c.Storage.DBType)
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	return nil
}
