package types

import "time"

type Workspace struct {
	ID        string    `jsonapi:"primary,workspaces"`
	Slug      string    `jsonapi:"attribute" json:"slug"`
	CreatedAt time.Time `jsonapi:"attribute" json:"created-at"`
}

type WorkspaceCreateOptions struct {
	// Type is a public field utilized by JSON:API to set the resource type via
	// the field tag. It is not a user-defined value and does not need to be
	// set.
	Type string `jsonapi:"primary,workspaces"`

	Slug string `jsonapi:"attribute" json:"slug"`
}
