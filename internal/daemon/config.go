package daemon

import (
	"errors"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/authenticator"
	"github.com/leg100/console/internal/flags"
	"github.com/leg100/console/internal/inmem"
	"github.com/leg100/console/internal/issue"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/pubsub"
	"github.com/leg100/console/internal/ui"
)

var (
	ErrLogStreamRequiresGroup  = errors.New("log stream consumer requires a consumer group")
	ErrLogStreamRequiresBroker = errors.New("log stream consumer requires at least one kafka broker")
)

// Config configures the console daemon. Descriptions of each field can be
// found in the flag definitions in ./cmd/consoled
type Config struct {
	Address              string
	Database             string
	SSL                  bool
	CertFile, KeyFile    string
	EnableRequestLogging bool

	// DefaultWorkspace is used for requests that do not name a workspace.
	DefaultWorkspace string
	// InternalDomain is the email domain of users who see unreleased
	// features.
	InternalDomain string
	GithubURL      string
	WebhookSecret  string

	// Relay forwards events to an external sink. Disabled unless a URL or
	// topic is set.
	Relay pubsub.RelayOptions

	// LogStream consumes function log subscriptions from kafka. Disabled
	// unless a topic is set.
	LogStream  issue.ConsumerOptions
	Subscriber issue.SubscriberOptions

	// Dedup remembers processed log records. Records are remembered in
	// redis if RedisURL is set, otherwise in process memory.
	CacheConfig inmem.CacheConfig
	RedisURL    string

	DeleteResolvedIssuesAfter time.Duration
	OverrideDeleterInterval   time.Duration

	LogConfig logr.Config
}

// NewConfig constructs a daemon configuration with defaults.
func NewConfig() Config {
	return Config{
		Address:          ":8080",
		Database:         "postgres:///console?host=/var/run/postgresql",
		DefaultWorkspace: authenticator.DefaultWorkspace,
		InternalDomain:   flags.DefaultInternalDomain,
		GithubURL:        ui.DefaultGithubURL,
		LogStream: issue.ConsumerOptions{
			GroupID:     "console",
			BatchSize:   issue.DefaultBatchSize,
			MaxAttempts: issue.DefaultMaxAttempts,
		},
		Subscriber: issue.SubscriberOptions{
			Concurrency: issue.DefaultConcurrency,
			Deadline:    issue.DefaultDeadline,
			MaxAge:      issue.DefaultMaxAge,
		},
		CacheConfig: inmem.CacheConfig{TTL: inmem.DefaultTTL},
		// resolved issues are kept for a week
		DeleteResolvedIssuesAfter: 7 * 24 * time.Hour,
	}
}

func (cfg *Config) Valid() error {
	if cfg.WebhookSecret == "" {
		return &internal.ErrMissingParameter{Parameter: "webhook-secret"}
	}
	if cfg.LogStream.Topic != "" {
		if len(cfg.LogStream.Brokers) == 0 {
			return ErrLogStreamRequiresBroker
		}
		if cfg.LogStream.GroupID == "" {
			return ErrLogStreamRequiresGroup
		}
	}
	return nil
}

func (cfg *Config) relayEnabled() bool {
	return cfg.Relay.URL != "" || cfg.Relay.Topic != ""
}
