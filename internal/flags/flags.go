// Package flags decides which features are enabled for a request.
package flags

import (
	"net/http"
	"strings"

	"github.com/leg100/console/internal/authz"
)

// DefaultInternalDomain is the email domain of staff who see unreleased
// features.
const DefaultInternalDomain = "@sst.dev"

type (
	// Flags are the features enabled for a request.
	Flags struct {
		// Deploys enables the stage updates pages.
		Deploys bool
	}

	// Resolver resolves the flags for a request.
	Resolver struct {
		InternalDomain string
	}
)

// Resolve flags for the given host and user email.
func (r Resolver) Resolve(host, email string) Flags {
	domain := r.InternalDomain
	if domain == "" {
		domain = DefaultInternalDomain
	}
	return Flags{
		Deploys: strings.Contains(host, "localhost") || (email != "" && strings.HasSuffix(email, domain)),
	}
}

// FromRequest resolves flags using the request host and the email of the
// user in the request context, if there is one.
func (r Resolver) FromRequest(req *http.Request) Flags {
	var email string
	if actor, err := authz.ActorFromContext(req.Context()); err == nil {
		if user, ok := actor.(*authz.User); ok {
			email = user.Email
		}
	}
	return r.Resolve(req.Host, email)
}
