// Package daemon configures and starts the console daemon and its subsystems.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/apprepo"
	"github.com/leg100/console/internal/authenticator"
	"github.com/leg100/console/internal/flags"
	"github.com/leg100/console/internal/http"
	"github.com/leg100/console/internal/inmem"
	"github.com/leg100/console/internal/issue"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/pubsub"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/run"
	"github.com/leg100/console/internal/sql"
	"github.com/leg100/console/internal/state"
	"github.com/leg100/console/internal/ui"
	"github.com/leg100/console/internal/workspace"
	"golang.org/x/sync/errgroup"
)

type (
	Daemon struct {
		Config
		logr.Logger

		*sql.DB

		Workspaces *workspace.Service
		Apps       *app.Service
		AppRepos   *apprepo.Service
		Runs       *run.Service
		State      *state.Service
		Issues     *issue.Service

		// ListenAddress is the listening address of the daemon's http server,
		// e.g. localhost:8080
		ListenAddress *net.TCPAddr

		handlers []http.Handlers
		listener *sql.Listener
		broker   *pubsub.Broker
		seen     closer
	}

	closer interface {
		Close() error
	}
)

// New builds a new daemon and establishes a connection to the database and
// migrates it to the latest schema. Close() should be called to close this
// connection.
func New(ctx context.Context, logger logr.Logger, cfg Config) (*Daemon, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	githubURL, err := internal.NewWebURL(cfg.GithubURL)
	if err != nil {
		return nil, fmt.Errorf("parsing github url: %w", err)
	}

	seen, err := newSeenCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("started dedup cache", "redis", cfg.RedisURL != "", "ttl", cfg.CacheConfig.TTL)

	db, err := sql.New(ctx, logger, cfg.Database)
	if err != nil {
		seen.Close()
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	// listener listens to database events
	listener := sql.NewListener(logger, db)
	broker := pubsub.NewBroker(logger, listener)
	publisher := pubsub.NewPublisher(logger, db)

	workspaceService := workspace.NewService(workspace.Options{
		Logger: logger,
		DB:     db,
	})
	appService := app.NewService(app.Options{
		Logger: logger,
		DB:     db,
	})
	runService := run.NewService(run.Options{
		Logger:    logger,
		DB:        db,
		Publisher: publisher,
	})
	runService.RegisterEventHandlers(broker)
	appRepoService := apprepo.NewService(apprepo.Options{
		Logger:        logger,
		DB:            db,
		Publisher:     publisher,
		Apps:          appService,
		Runs:          runService,
		WebhookSecret: cfg.WebhookSecret,
	})
	stateService := state.NewService(state.Options{
		Logger:    logger,
		DB:        db,
		Publisher: publisher,
	})
	subscriberOpts := cfg.Subscriber
	subscriberOpts.Seen = seen
	issueService := issue.NewService(issue.Options{
		Logger:     logger,
		DB:         db,
		Subscriber: subscriberOpts,
	})

	handlers := []http.Handlers{
		workspaceService,
		appService,
		appRepoService,
		runService,
		stateService,
		issueService,
		&ui.Handlers{
			Logger:    logger,
			Apps:      appService,
			AppRepos:  appRepoService,
			Runs:      runService,
			State:     stateService,
			Issues:    issueService,
			Flags:     flags.Resolver{InternalDomain: cfg.InternalDomain},
			GithubURL: githubURL.URL,
		},
	}

	return &Daemon{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Workspaces: workspaceService,
		Apps:       appService,
		AppRepos:   appRepoService,
		Runs:       runService,
		State:      stateService,
		Issues:     issueService,
		handlers:   handlers,
		listener:   listener,
		broker:     broker,
		seen:       seen,
	}, nil
}

// seenCache remembers processed log records.
type seenCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
	closer
}

func newSeenCache(ctx context.Context, cfg Config) (seenCache, error) {
	if cfg.RedisURL != "" {
		return inmem.NewRedis(ctx, cfg.RedisURL, cfg.CacheConfig.TTL)
	}
	return inmem.NewCache(cfg.CacheConfig)
}

// Start the console daemon and block until ctx is cancelled or an error is
// returned. The started channel is closed once the daemon has started.
func (d *Daemon) Start(ctx context.Context, started chan struct{}) error {
	// Cancel context the first time a func started with g.Go() fails
	g, ctx := errgroup.WithContext(ctx)

	// close all db connections upon exit
	defer d.DB.Close()

	defer func() {
		if err := d.seen.Close(); err != nil {
			d.Error(err, "closing dedup cache")
		}
	}()

	if err := d.ensureWorkspace(ctx, d.DefaultWorkspace); err != nil {
		return err
	}

	// Construct web server and start listening on port
	server, err := http.NewServer(d.Logger, http.ServerConfig{
		SSL:                  d.SSL,
		CertFile:             d.CertFile,
		KeyFile:              d.KeyFile,
		EnableRequestLogging: d.EnableRequestLogging,
		Middleware: []mux.MiddlewareFunc{
			authenticator.NewMiddleware(authenticator.Options{
				Logger:           d.Logger,
				Workspaces:       d.Workspaces,
				DefaultWorkspace: d.DefaultWorkspace,
			}),
		},
		Handlers:    d.handlers,
		HealthCheck: d.DB.Ping,
	})
	if err != nil {
		return fmt.Errorf("setting up http server: %w", err)
	}
	ln, err := net.Listen("tcp", d.Address)
	if err != nil {
		return err
	}
	d.ListenAddress = ln.Addr().(*net.TCPAddr)

	defer ln.Close()

	subsystems, err := d.subsystems()
	if err != nil {
		return err
	}
	// Start subsystems. Subsystems are started in order.
	for _, ss := range subsystems {
		if err := ss.Start(ctx, g); err != nil {
			return err
		}
		// Wait for subsystem to finish starting up if it exposes the ability to
		// do so.
		wait, ok := ss.System.(interface{ Started() <-chan struct{} })
		if ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second * 10):
				return fmt.Errorf("timed out waiting for subsystem to start: %s", ss.Name)
			case <-wait.Started():
			}
		}
	}

	// Run HTTP/JSON-API server and web app
	g.Go(func() error {
		if err := server.Start(ctx, ln); err != nil {
			return fmt.Errorf("http server terminated: %w", err)
		}
		return nil
	})

	// Inform the caller the daemon has started
	close(started)

	// Block until error or Ctrl-C received.
	return g.Wait()
}

func (d *Daemon) subsystems() ([]*Subsystem, error) {
	subsystems := []*Subsystem{
		// The listener is started first because it is responsible for listening
		// for database events, and the other subsystems rely on it to be
		// listening before they start.
		{
			Name:   "listener",
			Logger: d.Logger,
			System: d.listener,
		},
		{
			Name:   "event-handlers",
			Logger: d.Logger,
			DB:     d.DB,
			LockID: internal.Ptr(sql.EventHandlerLockID),
			System: d.broker,
		},
		{
			Name:   "issue-deleter",
			Logger: d.Logger,
			DB:     d.DB,
			LockID: internal.Ptr(sql.IssueDeleterLockID),
			System: d.Issues.NewDeleter(d.DeleteResolvedIssuesAfter, d.OverrideDeleterInterval),
		},
	}
	if d.relayEnabled() {
		relay, err := pubsub.NewRelay(d.Logger, d.listener, d.Relay)
		if err != nil {
			return nil, fmt.Errorf("setting up event relay: %w", err)
		}
		subsystems = append(subsystems, &Subsystem{
			Name:   "event-relay",
			Logger: d.Logger,
			DB:     d.DB,
			LockID: internal.Ptr(sql.EventRelayLockID),
			System: relay,
		})
	}
	if d.LogStream.Topic != "" {
		consumer, err := issue.NewConsumer(d.Logger, d.Issues, d.LogStream)
		if err != nil {
			return nil, fmt.Errorf("setting up log stream consumer: %w", err)
		}
		subsystems = append(subsystems, &Subsystem{
			Name:   "log-stream-consumer",
			Logger: d.Logger,
			DB:     d.DB,
			LockID: internal.Ptr(sql.LogStreamConsumerLockID),
			System: consumer,
		})
	}
	return subsystems, nil
}

// ensureWorkspace creates the workspace if it does not already exist.
func (d *Daemon) ensureWorkspace(ctx context.Context, slug string) error {
	_, err := d.Workspaces.GetBySlug(ctx, slug)
	if !errors.Is(err, internal.ErrResourceNotFound) {
		return err
	}
	_, err = d.Workspaces.Create(ctx, workspace.CreateOptions{Slug: &slug})
	if err != nil && !errors.Is(err, internal.ErrResourceAlreadyExists) {
		return fmt.Errorf("creating default workspace: %w", err)
	}
	return nil
}

// compile-time check that the issue deleter satisfies the subsystem interface
var _ Startable = (*resource.Deleter[*issue.Issue])(nil)
