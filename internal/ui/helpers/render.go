package helpers

import (
	"context"
	"html/template"
	"net/http"

	"github.com/a-h/templ"
)

type (
	requestKey struct{}
	flashesKey struct{}
)

// Render a component. Flash messages are popped off the cookie stack and,
// along with the request, are made available to the component via its
// context.
func Render(c templ.Component, w http.ResponseWriter, r *http.Request) {
	flashes, _ := PopFlashes(r, w)
	ctx := context.WithValue(r.Context(), requestKey{}, r)
	ctx = context.WithValue(ctx, flashesKey{}, flashes)
	errHandler := templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Error(r, w, err.Error(), WithStatus(http.StatusInternalServerError))
		})
	})
	templ.Handler(c, errHandler).ServeHTTP(w, r.WithContext(ctx))
}

func RequestFromContext(ctx context.Context) *http.Request {
	if r, ok := ctx.Value(requestKey{}).(*http.Request); ok {
		return r
	}
	return nil
}

// FlashesFromContext returns the flash messages popped when rendering began.
func FlashesFromContext(ctx context.Context) []Flash {
	flashes, _ := ctx.Value(flashesKey{}).([]Flash)
	return flashes
}

type (
	ErrorOption func(*errorOptions)

	errorOptions struct {
		status int
	}
)

func WithStatus(status int) ErrorOption {
	return func(opts *errorOptions) {
		opts.status = status
	}
}

var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>error | console</title>
</head>
<body>
  <pre>{{ . }}</pre>
</body>
</html>
`))

// Error sends an error response. If the request was a form submission then
// the error is flashed and the user is sent back to the page they came from.
// Otherwise an error page is rendered, with status 500 unless overridden.
func Error(r *http.Request, w http.ResponseWriter, err string, opts ...ErrorOption) {
	cfg := errorOptions{status: http.StatusInternalServerError}
	for _, fn := range opts {
		fn(&cfg)
	}
	if r.Method == "POST" && r.Referer() != "" {
		FlashError(w, err)
		http.Redirect(w, r, r.Referer(), http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(cfg.status)
	_ = errorTemplate.Execute(w, err)
}
