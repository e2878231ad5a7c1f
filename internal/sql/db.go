package sql

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/logr"
)

const (
	// max conns avail in a pgx pool
	defaultMaxConnections = 20
	maxConnsParam         = "pool_max_conns"
)

type (
	// DB provides access to the postgres db.
	DB struct {
		*pgxpool.Pool // db connection pool
		logr.Logger
	}

	// Connection is either a pool, a dedicated connection, or a transaction.
	Connection interface {
		Begin(ctx context.Context) (pgx.Tx, error)
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	}
)

// New migrates the database to the latest migration version, and then
// constructs and returns a connection pool.
func New(ctx context.Context, logger logr.Logger, connString string) (*DB, error) {
	if err := migrate(ctx, logger, connString); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	// Bump max number of connections in a pool. By default pgx sets it to the
	// greater of 4 or the num of CPUs. However, consoled acquires dedicated
	// connections for the listener and for session-level advisory locks and
	// can easily exhaust this.
	connString, err := setDefaultMaxConnections(connString, defaultMaxConnections)
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		// Set location to UTC for times scanned from database. This ensures
		// that tests for equality pass.
		//
		// See: https://github.com/jackc/pgx/issues/1945#issuecomment-2002077247
		conn.TypeMap().RegisterType(&pgtype.Type{
			Name:  "timestamptz",
			OID:   pgtype.TimestamptzOID,
			Codec: &pgtype.TimestamptzCodec{ScanLocation: time.UTC},
		})
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("connected to database", "connstr", redact(connString))

	return &DB{Pool: pool, Logger: logger}, nil
}

// Query executes a query, returning rows. Any error is deferred until the rows
// are collected.
func (db *DB) Query(ctx context.Context, sql string, args ...any) pgx.Rows {
	rows, _ := db.Conn(ctx).Query(ctx, sql, args...)
	return rows
}

// queryRowResult wraps the error returned by pgx.Row.Scan()
type queryRowResult struct {
	pgx.Row
}

func (r *queryRowResult) Scan(dest ...any) error {
	if err := r.Row.Scan(dest...); err != nil {
		return toError(err)
	}
	return nil
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	row := db.Conn(ctx).QueryRow(ctx, sql, args...)
	return &queryRowResult{Row: row}
}

// Exec executes the sql with the given args. It assumes the command is a row
// affecting command and returns an error if the command does not affect any
// rows.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	cmdTag, err := db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return pgconn.CommandTag{}, toError(err)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgconn.CommandTag{}, internal.ErrResourceNotFound
	}
	return cmdTag, nil
}

// Int is a convenience wrapper for executing a query that returns a single
// integer.
func (db *DB) Int(ctx context.Context, sql string, args ...any) (int64, error) {
	rows := db.Query(ctx, sql, args...)
	return CollectOneRow(rows, pgx.RowTo[int64])
}

// Tx provides the caller with a callback in which all operations are conducted
// within a transaction. If a transaction is already in progress in the context
// then a nested transaction (savepoint) is created.
func (db *DB) Tx(ctx context.Context, callback func(context.Context) error) error {
	return pgx.BeginFunc(ctx, db.Conn(ctx), func(tx pgx.Tx) error {
		return callback(newContext(ctx, tx))
	})
}

// WaitAndLock obtains an exclusive session-level advisory lock. If another
// session holds the lock with the given id then it'll wait until the other
// session releases the lock. The given fn is called once the lock is obtained
// and when the fn finishes the lock is released.
func (db *DB) WaitAndLock(ctx context.Context, id int64, fn func(context.Context) error) (err error) {
	// A dedicated connection is obtained. Using a connection pool would cause
	// problems because a lock must be released on the same connection on which
	// it was obtained.
	return db.Pool.AcquireFunc(ctx, func(conn *pgxpool.Conn) error {
		if _, err = conn.Exec(ctx, "SELECT pg_advisory_lock($1)", id); err != nil {
			return err
		}
		defer func() {
			// use fresh context in case parent context has been canceled.
			_, closeErr := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", id)
			if closeErr == nil {
				return
			}
			if err != nil {
				db.Error(closeErr, "unlocking session-level advisory lock")
				return
			}
			err = closeErr
		}()
		return fn(newContext(ctx, conn))
	})
}

// Notify sends a postgres notification on the given channel. If called within
// a transaction then the notification is only delivered once the transaction
// commits, and is discarded if it rolls back.
func (db *DB) Notify(ctx context.Context, channel string, payload []byte) error {
	_, err := db.Conn(ctx).Exec(ctx, "SELECT pg_notify($1, $2)", channel, string(payload))
	if err != nil {
		return fmt.Errorf("sending postgres notification: %w", err)
	}
	return nil
}

// Conn returns the transaction or dedicated connection from the context if
// there is one, otherwise the pool.
func (db *DB) Conn(ctx context.Context) Connection {
	if conn, ok := fromContext(ctx); ok {
		return conn
	}
	return db.Pool
}

// setDefaultMaxConnections sets the pool's maximum connections unless the
// connection string already sets it.
func setDefaultMaxConnections(connString string, max int) (string, error) {
	if strings.Contains(connString, maxConnsParam+"=") {
		return connString, nil
	}
	// pg connection string can be either a URL or a DSN
	if isURL(connString) {
		u, err := url.Parse(connString)
		if err != nil {
			return "", fmt.Errorf("parsing connection string url: %w", err)
		}
		q := u.Query()
		q.Add(maxConnsParam, strconv.Itoa(max))
		u.RawQuery = q.Encode()
		return url.PathUnescape(u.String())
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s=%d", connString, maxConnsParam, max)), nil
}

func isURL(connString string) bool {
	return strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://")
}

// dsnPasswordRegex matches the password of a key/value connection string.
var dsnPasswordRegex = regexp.MustCompile(`password=('[^']*'|\S+)`)

// redact removes any password from a connection string before it is logged.
func redact(connString string) string {
	if !isURL(connString) {
		return dsnPasswordRegex.ReplaceAllString(connString, "password=xxxxx")
	}
	u, err := url.Parse(connString)
	if err != nil || u.User == nil {
		return connString
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
