package config

import (
	"time"

	redisclient "github.com/vietddude/upgradewatch/internal/infra/redis"
	"github.com/vietddude/upgradewatch/internal/infra/storage/sqldb"
)

// QueryErrorPolicy decides what a watcher does when a plan or block query
// fails: halt the watcher (fail fast, the source behavior) or skip the tick
// and retry on the next interval.
type QueryErrorPolicy string

const (
	PolicyHalt QueryErrorPolicy = "halt"
	PolicySkip QueryErrorPolicy = "skip"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Chains   []ChainConfig      `yaml:"chains"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database sqldb.Config       `yaml:"database"`
	Storage  StorageConfig      `yaml:"storage"`
	Slack    SlackConfig        `yaml:"slack"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// StorageConfig holds the sqlite ledger location. Ignored when a database
// URL is configured.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SlackConfig holds the shared alert sink settings. A chain may override the
// webhook with its own.
type SlackConfig struct {
	Webhook string `yaml:"webhook"`
}

// ChainConfig holds settings for one monitored chain.
type ChainConfig struct {
	ChainID        string           `yaml:"id"`
	Endpoint       string           `yaml:"endpoint"` // REST (cosmos API) base URL
	RPC            string           `yaml:"rpc"`      // tendermint RPC base URL
	Interval       time.Duration    `yaml:"interval"`
	ReminderBlocks int64            `yaml:"reminder_blocks"`
	RequestTimeout time.Duration    `yaml:"request_timeout"`
	OnQueryError   QueryErrorPolicy `yaml:"on_query_error"`
	RestartBackoff time.Duration    `yaml:"restart_backoff"` // 0 = halted watchers stay halted
	Webhook        string           `yaml:"webhook"`         // overrides slack.webhook
}
