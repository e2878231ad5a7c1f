package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cmdutil "github.com/leg100/console/cmd"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/daemon"
	"github.com/leg100/console/internal/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	// Configure ^C to terminate program
	ctx, cancel := context.WithCancel(context.Background())
	cmdutil.CatchCtrlC(cancel)

	if err := parseFlags(ctx, os.Args[1:], os.Stdout); err != nil {
		cmdutil.PrintError(err)
		os.Exit(1)
	}
}

func parseFlags(ctx context.Context, args []string, out io.Writer) error {
	cfg := daemon.NewConfig()

	cmd := &cobra.Command{
		Use:           "consoled",
		Short:         "console daemon",
		Long:          "consoled is the daemon component of the deployment console.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       internal.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logr.New(cfg.LogConfig)
			if err != nil {
				return err
			}

			d, err := daemon.New(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			// block until ^C received
			return d.Start(cmd.Context(), make(chan struct{}))
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)

	registerFlags(cmd.Flags(), &cfg)

	if err := cmdutil.SetFlagsFromEnvVariables(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to populate config from environment vars: %w", err)
	}

	return cmd.ExecuteContext(ctx)
}

func registerFlags(flags *pflag.FlagSet, cfg *daemon.Config) {
	flags.StringVar(&cfg.Address, "address", cfg.Address, "Listening address")
	flags.StringVar(&cfg.Database, "database", cfg.Database, "Postgres connection string")
	flags.BoolVar(&cfg.SSL, "ssl", false, "Toggle SSL")
	flags.StringVar(&cfg.CertFile, "cert-file", "", "Path to SSL certificate (required if enabling SSL)")
	flags.StringVar(&cfg.KeyFile, "key-file", "", "Path to SSL key (required if enabling SSL)")
	flags.BoolVar(&cfg.EnableRequestLogging, "log-http-requests", false, "Log HTTP requests")

	flags.StringVar(&cfg.DefaultWorkspace, "default-workspace", cfg.DefaultWorkspace, "Workspace for requests that do not name one. Created on startup if missing.")
	flags.StringVar(&cfg.InternalDomain, "internal-domain", cfg.InternalDomain, "Email domain of users who see unreleased features")
	flags.StringVar(&cfg.GithubURL, "github-url", cfg.GithubURL, "Base URL of github, used to link commits and branches")
	flags.StringVar(&cfg.WebhookSecret, "webhook-secret", "", "Secret for verifying github webhook signatures. Required.")

	flags.StringVar(&cfg.Relay.URL, "relay-url", "", "Relay events to this destination, e.g. kafka://<broker>/<topic> or gcppubsub://<project>/<topic>")
	flags.StringSliceVar(&cfg.Relay.Brokers, "relay-brokers", nil, "Kafka brokers to relay events to")
	flags.StringVar(&cfg.Relay.Topic, "relay-topic", "", "Kafka topic to relay events to. Relaying is disabled unless this or --relay-url is set.")

	flags.StringSliceVar(&cfg.LogStream.Brokers, "log-stream-brokers", nil, "Kafka brokers carrying function log subscriptions")
	flags.StringVar(&cfg.LogStream.Topic, "log-stream-topic", "", "Kafka topic carrying function log subscriptions. Consuming is disabled unless set.")
	flags.StringVar(&cfg.LogStream.GroupID, "log-stream-group", cfg.LogStream.GroupID, "Kafka consumer group")
	flags.IntVar(&cfg.LogStream.BatchSize, "log-stream-batch-size", cfg.LogStream.BatchSize, "Maximum number of log records processed per batch")
	flags.IntVar(&cfg.LogStream.MaxAttempts, "log-stream-max-attempts", cfg.LogStream.MaxAttempts, "Attempts at processing a log record before giving up on it")

	flags.IntVar(&cfg.Subscriber.Concurrency, "issue-concurrency", cfg.Subscriber.Concurrency, "Number of log records processed at once")
	flags.DurationVar(&cfg.Subscriber.Deadline, "issue-deadline", cfg.Subscriber.Deadline, "Time after which no more records in a batch are started")
	flags.DurationVar(&cfg.Subscriber.MaxAge, "issue-max-age", cfg.Subscriber.MaxAge, "Log records older than this are dropped")

	flags.IntVar(&cfg.CacheConfig.Size, "cache-size", 0, "Maximum dedup cache size in MB. 0 means unlimited size.")
	flags.DurationVar(&cfg.CacheConfig.TTL, "cache-expiry", cfg.CacheConfig.TTL, "Dedup cache entry TTL.")
	flags.StringVar(&cfg.RedisURL, "redis-url", "", "Remember processed log records in redis instead of process memory")

	flags.DurationVar(&cfg.DeleteResolvedIssuesAfter, "delete-resolved-issues-after", cfg.DeleteResolvedIssuesAfter, "Delete issues that have stayed resolved for longer than this. 0 disables deletion.")
	flags.DurationVar(&cfg.OverrideDeleterInterval, "deleter-interval", 0, "Override interval between checks for resolved issues to delete")

	logr.RegisterFlags(flags, &cfg.LogConfig)
}
