package sql

import (
	"context"
)

// context key for retrieving connection from context
type connCtxKey struct{}

func newContext(ctx context.Context, conn Connection) context.Context {
	return context.WithValue(ctx, connCtxKey{}, conn)
}

func fromContext(ctx context.Context) (Connection, bool) {
	conn, ok := ctx.Value(connCtxKey{}).(Connection)
	return conn, ok
}
