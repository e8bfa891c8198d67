package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_EnvSubstitution(t *testing.T) {
	os.Setenv("TEST_WEBHOOK_URL", "https://hooks.slack.com/services/T0/B0/xyz")
	defer os.Unsetenv("TEST_WEBHOOK_URL")

	path := writeConfig(t, `
slack:
  webhook: ${TEST_WEBHOOK_URL}
chains:
  - id: cosmoshub-4
    endpoint: https://rest.cosmos.network
    rpc: https://rpc.cosmos.network
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Slack.Webhook != "https://hooks.slack.com/services/T0/B0/xyz" {
		t.Errorf("Expected webhook from env, got %s", cfg.Slack.Webhook)
	}
	if cfg.Chains[0].Webhook != cfg.Slack.Webhook {
		t.Errorf("Expected chain to inherit shared webhook, got %s", cfg.Chains[0].Webhook)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
chains:
  - id: cosmoshub-4
    endpoint: https://rest.cosmos.network
    rpc: https://rpc.cosmos.network
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	c := cfg.Chains[0]
	if c.Interval != 30*time.Second {
		t.Errorf("expected default interval 30s, got %v", c.Interval)
	}
	if c.ReminderBlocks != 100 {
		t.Errorf("expected default reminder_blocks 100, got %d", c.ReminderBlocks)
	}
	if c.RequestTimeout != 5*time.Second {
		t.Errorf("expected default request_timeout 5s, got %v", c.RequestTimeout)
	}
	if c.OnQueryError != PolicyHalt {
		t.Errorf("expected default policy halt, got %s", c.OnQueryError)
	}
	if c.RestartBackoff != 0 {
		t.Errorf("expected default restart_backoff 0, got %v", c.RestartBackoff)
	}
}

func TestLoad_RejectsUnknownPolicy(t *testing.T) {
	path := writeConfig(t, `
chains:
  - id: cosmoshub-4
    endpoint: https://rest.cosmos.network
    rpc: https://rpc.cosmos.network
    on_query_error: retry-forever
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown on_query_error policy")
	}
}

func TestLoad_RequiresEndpoints(t *testing.T) {
	path := writeConfig(t, `
chains:
  - id: cosmoshub-4
    rpc: https://rpc.cosmos.network
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}
