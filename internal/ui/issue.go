package ui

import (
	"net/http"

	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/http/decode"
	"github.com/leg100/console/internal/issue"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/ui/helpers"
	"github.com/leg100/console/internal/ui/paths"
)

type issueListProps struct {
	Stage    *app.Stage
	Resolved bool
	Page     *resource.Page[*issue.Issue]
}

func (h *Handlers) listIssues(w http.ResponseWriter, r *http.Request) {
	stageID, err := decode.ID("stage_id", r)
	if err != nil {
		helpers.Error(r, w, err.Error(), helpers.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	var opts issue.ListOptions
	if err := decode.Query(&opts, r.URL.Query()); err != nil {
		helpers.Error(r, w, err.Error(), helpers.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	stage, err := h.Apps.GetStage(r.Context(), stageID)
	if err != nil {
		helpers.Error(r, w, err.Error(), withErrorStatus(err))
		return
	}
	issues, err := h.Issues.ListByStage(r.Context(), stageID, opts)
	if err != nil {
		helpers.Error(r, w, err.Error())
		return
	}
	helpers.Render(page("issues.tmpl", pageData{
		Title:       stage.Name + " | issues",
		Breadcrumbs: []breadcrumb{{Name: stage.Name}, {Name: "issues"}},
		Content: issueListProps{
			Stage:    stage,
			Resolved: opts.Resolved,
			Page:     issues,
		},
	}), w, r)
}

func (h *Handlers) resolveIssue(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("issue_id", r)
	if err != nil {
		helpers.Error(r, w, err.Error(), helpers.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	resolved, err := h.Issues.Resolve(r.Context(), id)
	if err != nil {
		helpers.Error(r, w, err.Error())
		return
	}
	helpers.FlashSuccess(w, "resolved issue: "+resolved.Error)
	http.Redirect(w, r, paths.Issues(resolved.StageID), http.StatusFound)
}
