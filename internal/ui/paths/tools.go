// Package paths provides helpers for constructing web UI paths.
package paths

//go:generate go run gen.go

// imported here for the generator, which is excluded from builds by its
// build constraint.
import (
	_ "github.com/goccy/go-yaml"
	_ "github.com/iancoleman/strcase"
)
