// Package authz handles all things authorization
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
)

// unexported key type prevents collisions
type actorCtxKeyType string

const actorCtxKey actorCtxKeyType = "actor"

// ErrNoActor is returned when the context carries no actor.
var ErrNoActor = errors.New("no actor in context")

// Actor is an entity that carries out actions on resources.
type Actor interface {
	// Workspace returns the workspace to which the actor is scoped and
	// whether it is scoped to a workspace at all.
	Workspace() (resource.ID, bool)

	String() string
}

// WithActor adds an actor to a context
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext retrieves an actor from a context
func ActorFromContext(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(actorCtxKey).(Actor)
	if !ok {
		return nil, ErrNoActor
	}
	return actor, nil
}

// WorkspaceID returns the workspace of the actor in the context. An error is
// returned if there is no actor or the actor is not scoped to a workspace.
func WorkspaceID(ctx context.Context) (resource.ID, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return resource.ID{}, err
	}
	id, ok := actor.Workspace()
	if !ok {
		return resource.ID{}, fmt.Errorf("%w: %s is not scoped to a workspace", internal.ErrAccessNotPermitted, actor)
	}
	return id, nil
}

// CanAccess returns an error if the actor in the context is not permitted to
// access resources in the given workspace.
func CanAccess(ctx context.Context, workspaceID resource.ID) error {
	got, err := WorkspaceID(ctx)
	if err != nil {
		return err
	}
	if got != workspaceID {
		return internal.ErrAccessNotPermitted
	}
	return nil
}
