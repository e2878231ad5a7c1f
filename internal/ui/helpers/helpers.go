// Package helpers provides shared functionality for rendering UI pages.
package helpers

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/leg100/console/internal/authz"
	consolehttp "github.com/leg100/console/internal/http"
)

func AssetPath(ctx context.Context, path string) (string, error) {
	return consolehttp.AssetsFS.Path(path)
}

// CurrentUser returns the email of the user making the request, or an empty
// string if the request is not from a user.
func CurrentUser(ctx context.Context) string {
	actor, err := authz.ActorFromContext(ctx)
	if err != nil {
		return ""
	}
	if user, ok := actor.(*authz.User); ok {
		return user.Email
	}
	return ""
}

func CurrentPath(ctx context.Context) string {
	request := RequestFromContext(ctx)
	if request == nil {
		return ""
	}
	return request.URL.Path
}

func Cookie(ctx context.Context, name string) string {
	request := RequestFromContext(ctx)
	if request == nil {
		return ""
	}
	if cookie, err := request.Cookie(name); err == nil {
		return cookie.Value
	}
	return ""
}

// SetCookie sets a cookie on the response. A non-nil expiry of the zero time
// deletes the cookie.
func SetCookie(w http.ResponseWriter, name, value string, expiry *time.Time) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if expiry != nil {
		cookie.Expires = *expiry
		if expiry.IsZero() {
			cookie.MaxAge = -1
		}
	}
	http.SetCookie(w, cookie)
}

func MarkdownToHTML(md []byte) template.HTML {
	return template.HTML(string(markdown.ToHTML(md, nil, nil)))
}
