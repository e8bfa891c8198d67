package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	for i := range cfg.Chains {
		c := &cfg.Chains[i]
		if c.Interval == 0 {
			c.Interval = 30 * time.Second
		}
		if c.ReminderBlocks == 0 {
			c.ReminderBlocks = 100
		}
		if c.RequestTimeout == 0 {
			c.RequestTimeout = 5 * time.Second
		}
		if c.OnQueryError == "" {
			c.OnQueryError = PolicyHalt
		}
		if c.Webhook == "" {
			c.Webhook = cfg.Slack.Webhook
		}
	}
}

func validate(cfg *AppConfig) error {
	for _, c := range cfg.Chains {
		if c.ChainID == "" {
			return fmt.Errorf("chain config missing id")
		}
		if c.Endpoint == "" {
			return fmt.Errorf("chain %s: endpoint is required", c.ChainID)
		}
		if c.RPC == "" {
			return fmt.Errorf("chain %s: rpc is required", c.ChainID)
		}
		if c.OnQueryError != PolicyHalt && c.OnQueryError != PolicySkip {
			return fmt.Errorf(
				"chain %s: on_query_error must be %q or %q, got %q",
				c.ChainID, PolicyHalt, PolicySkip, c.OnQueryError,
			)
		}
	}
	return nil
}
