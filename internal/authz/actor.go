package authz

import (
	"fmt"

	"github.com/leg100/console/internal/resource"
)

type (
	// System is the actor for event handlers and background work, acting
	// on behalf of a workspace.
	System struct {
		WorkspaceID resource.ID
	}

	// User is a person using the web app, identified by email. Their identity
	// is asserted by an upstream proxy.
	User struct {
		Email       string
		WorkspaceID resource.ID
	}

	// Public is an unauthenticated caller, such as an ingestion endpoint.
	Public struct{}
)

func (s *System) Workspace() (resource.ID, bool) { return s.WorkspaceID, true }
func (s *System) String() string                 { return fmt.Sprintf("system:%s", s.WorkspaceID) }

func (u *User) Workspace() (resource.ID, bool) { return u.WorkspaceID, true }
func (u *User) String() string                 { return u.Email }

func (*Public) Workspace() (resource.ID, bool) { return resource.ID{}, false }
func (*Public) String() string                 { return "public" }
