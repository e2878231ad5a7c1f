//go:build ignore

// gen generates path helpers for the web UI from paths.yaml.
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/goccy/go-yaml"
	"github.com/iancoleman/strcase"
)

// Prefix is prepended to every UI path.
const Prefix = "/app"

// action is a controller action
type action struct {
	Name string
	// Collection is true if the action acts on the collection of resources
	// rather than a single member.
	Collection bool `yaml:",omitempty"`
}

// controllerSpec is a controller as specified in paths.yaml.
type controllerSpec struct {
	Name    string
	Actions []action         `yaml:",omitempty"`
	Nested  []controllerSpec `yaml:",omitempty"`
}

type controller struct {
	Name    string
	Parent  *controller
	Actions []action
}

func (c controller) Path() string {
	return "/" + strcase.ToKebab(c.Name) + "s"
}

func (c controller) Camel() string { return strcase.ToCamel(c.Name) }

func (c controller) LowerCamel() string { return strcase.ToLowerCamel(c.Name) }

// FormatString returns the format string passed to fmt.Sprintf by the path
// helper for the action.
//
//	list:             /app/<parent>s/%v/<name>s
//	collection (new): /app/<parent>s/%v/<name>s/new
//	show:             /app/<name>s/%v
//	member (delete):  /app/<name>s/%v/delete
func (c controller) FormatString(a action) string {
	var b strings.Builder
	b.WriteString(Prefix)
	if a.Collection && c.Parent != nil {
		b.WriteString(c.Parent.Path())
		b.WriteString("/%v")
	}
	b.WriteString(c.Path())
	switch {
	case a.Name == "list":
	case a.Collection:
		b.WriteString("/" + a.Name)
	case a.Name == "show":
		b.WriteString("/%v")
	default:
		b.WriteString("/%v/" + a.Name)
	}
	return b.String()
}

// Param is the name of the helper's parameter, or an empty string if it has
// none.
func (c controller) Param(a action) string {
	if !a.Collection {
		return c.LowerCamel()
	}
	if c.Parent != nil {
		return c.Parent.LowerCamel()
	}
	return ""
}

// HelperName is the name of the path helper function for the action.
func (c controller) HelperName(a action) string {
	switch a.Name {
	case "show":
		return c.Camel()
	case "list":
		return c.Camel() + "s"
	default:
		return strcase.ToCamel(a.Name) + c.Camel()
	}
}

func main() {
	b, err := os.ReadFile("paths.yaml")
	if err != nil {
		log.Fatal("reading paths: ", err.Error())
	}
	var specs []controllerSpec
	if err := yaml.Unmarshal(b, &specs); err != nil {
		log.Fatal("unmarshalling paths: ", err.Error())
	}
	tmpl, err := template.New("paths.go.tmpl").ParseFiles("paths.go.tmpl")
	if err != nil {
		log.Fatal("parsing template: ", err.Error())
	}
	for _, ctlr := range buildControllers(nil, specs) {
		// render to a buffer first so that a template error does not
		// truncate an existing file.
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, ctlr); err != nil {
			log.Fatal("executing template: ", err.Error())
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			log.Fatal("formatting source: ", err.Error())
		}
		if err := os.WriteFile(fmt.Sprintf("%s_paths.go", ctlr.Name), src, 0o644); err != nil {
			log.Fatal("writing file: ", err.Error())
		}
	}
}

// buildControllers recursively builds controllers from their specs.
func buildControllers(parent *controller, specs []controllerSpec) []controller {
	var controllers []controller
	for _, spec := range specs {
		ctlr := controller{Name: spec.Name, Parent: parent, Actions: spec.Actions}
		controllers = append(controllers, ctlr)
		controllers = append(controllers, buildControllers(&ctlr, spec.Nested)...)
	}
	return controllers
}
