package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
	"github.com/leg100/console/internal"
	consolehttp "github.com/leg100/console/internal/http"
	"github.com/leg100/console/internal/state"
	"github.com/leg100/console/internal/ui/helpers"
	"github.com/leg100/console/internal/ui/paths"
)

const (
	layoutTemplatePath   = "templates/layout.tmpl"
	contentTemplatesGlob = "templates/content/*.tmpl"
	partialTemplatesGlob = "templates/partials/*.tmpl"

	emDash = "—"
)

//go:embed templates
var templatesFS embed.FS

var pages = template.Must(newTemplateCache(templatesFS))

type (
	// pageData is passed to every page template, embedding the page-specific
	// content within the layout.
	pageData struct {
		Title       string
		Breadcrumbs []breadcrumb
		Content     any

		ctx context.Context
	}

	breadcrumb struct {
		Name string
		Link string
	}
)

func (p pageData) CurrentUser() string      { return helpers.CurrentUser(p.ctx) }
func (p pageData) CurrentPath() string      { return helpers.CurrentPath(p.ctx) }
func (p pageData) Flashes() []helpers.Flash { return helpers.FlashesFromContext(p.ctx) }
func (p pageData) Version() string          { return internal.Version }

// page returns a component rendering the named content template within the
// layout.
func page(name string, data pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		tmpl, ok := pages[name]
		if !ok {
			return fmt.Errorf("unable to locate template: %s", name)
		}
		data.ctx = ctx
		// render to a buffer first so that a failed render does not send a
		// partial page
		buf := new(bytes.Buffer)
		if err := tmpl.Execute(buf, data); err != nil {
			return err
		}
		_, err := buf.WriteTo(w)
		return err
	})
}

// newTemplateCache parses each content template along with the layout and
// partials.
func newTemplateCache(templates fs.FS) (map[string]*template.Template, error) {
	cache := make(map[string]*template.Template)

	contents, err := fs.Glob(templates, contentTemplatesGlob)
	if err != nil {
		return nil, err
	}
	funcs := templateFuncs()
	for _, content := range contents {
		name := filepath.Base(content)

		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templates,
			layoutTemplatePath,
			partialTemplatesGlob,
			content,
		)
		if err != nil {
			return nil, err
		}
		cache[name] = tmpl
	}
	return cache, nil
}

func templateFuncs() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["asset"] = consolehttp.AssetsFS.Path
	funcs["markdown"] = func(s string) template.HTML {
		return helpers.MarkdownToHTML([]byte(s))
	}
	funcs["legend"] = func(counts state.Counts) template.HTML {
		return template.HTML(helpers.ToString(legendComponent(counts)))
	}
	funcs["statusIcon"] = func(status state.Status) template.HTML {
		return template.HTML(helpers.ToString(statusIcon(status)))
	}
	funcs["since"] = since
	funcs["duration"] = duration
	funcs["countCopy"] = state.CountCopy
	funcs["errorCountCopy"] = state.ErrorCountCopy
	funcs["resourceName"] = state.ResourceName

	funcs["appsPath"] = paths.Apps
	funcs["updatesPath"] = paths.Updates
	funcs["updatePath"] = paths.Update
	funcs["issuesPath"] = paths.Issues
	funcs["resolveIssuePath"] = paths.ResolveIssue
	funcs["appReposPath"] = paths.AppRepos
	funcs["createAppRepoPath"] = paths.CreateAppRepo
	funcs["deleteAppRepoPath"] = paths.DeleteAppRepo
	return funcs
}

// since describes how long ago t was, or a dash if t is unset.
func since(t any) string {
	switch t := t.(type) {
	case time.Time:
		if !t.IsZero() {
			return humanize.Time(t)
		}
	case *time.Time:
		if t != nil {
			return humanize.Time(*t)
		}
	}
	return emDash
}

func duration(d time.Duration) string {
	if d == 0 {
		return emDash
	}
	return d.Round(time.Second).String()
}

// statusIcon renders a dot coloured according to the update status.
func statusIcon(status state.Status) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span class="status-icon status-%s" title="%s"></span>`,
			templ.EscapeString(string(status)), templ.EscapeString(status.Label()))
		return err
	})
}
