package ui

import (
	"html/template"
	"net/http"

	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/http/decode"
	"github.com/leg100/console/internal/run"
	"github.com/leg100/console/internal/state"
	"github.com/leg100/console/internal/ui/helpers"
	"github.com/leg100/console/internal/ui/paths"
)

type (
	updateListProps struct {
		Stage *app.Stage
		Rows  []updateRow
	}

	updateRow struct {
		Update *state.Update
		// Number of the update in the list, with the newest numbered highest.
		Number int
	}

	updateProps struct {
		Update    *state.Update
		Changes   state.Changes
		Run       *run.Run
		Logs      template.HTML
		Trigger   *run.Trigger
		CommitURL string
		BranchURL string
	}
)

func (h *Handlers) listUpdates(w http.ResponseWriter, r *http.Request) {
	if !h.Flags.FromRequest(r).Deploys {
		helpers.Error(r, w, "page not found", helpers.WithStatus(http.StatusNotFound))
		return
	}
	stageID, err := decode.ID("stage_id", r)
	if err != nil {
		helpers.Error(r, w, err.Error(), helpers.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	stage, err := h.Apps.GetStage(r.Context(), stageID)
	if err != nil {
		helpers.Error(r, w, err.Error(), withErrorStatus(err))
		return
	}
	updates, err := h.State.ListUpdates(r.Context(), stageID)
	if err != nil {
		helpers.Error(r, w, err.Error())
		return
	}
	props := updateListProps{Stage: stage, Rows: make([]updateRow, len(updates))}
	for i, u := range updates {
		props.Rows[i] = updateRow{Update: u, Number: len(updates) - i}
	}
	helpers.Render(page("updates.tmpl", pageData{
		Title:       stage.Name + " | updates",
		Breadcrumbs: []breadcrumb{{Name: stage.Name}, {Name: "updates"}},
		Content:     props,
	}), w, r)
}

func (h *Handlers) getUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.Flags.FromRequest(r).Deploys {
		helpers.Error(r, w, "page not found", helpers.WithStatus(http.StatusNotFound))
		return
	}
	updateID, err := decode.ID("update_id", r)
	if err != nil {
		helpers.Error(r, w, err.Error(), helpers.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	update, err := h.State.GetUpdate(r.Context(), updateID)
	if err != nil {
		helpers.Error(r, w, err.Error(), withErrorStatus(err))
		return
	}
	events, err := h.State.ListResourceEvents(r.Context(), updateID)
	if err != nil {
		helpers.Error(r, w, err.Error())
		return
	}
	props := updateProps{
		Update:  update,
		Changes: state.GroupChanges(update, events),
	}
	if runID, ok := update.RunID(); ok {
		ciRun, err := h.Runs.Get(r.Context(), runID)
		if err != nil {
			helpers.Error(r, w, "retrieving run: "+err.Error())
			return
		}
		logs, err := h.Runs.GetLogs(r.Context(), runID)
		if err != nil {
			helpers.Error(r, w, "retrieving logs: "+err.Error())
			return
		}
		props.Run = ciRun
		props.Logs = run.RenderLogs(logs)
		props.Trigger = &ciRun.Trigger
		props.CommitURL = h.githubURL(ciRun.Trigger.Repo.Owner, ciRun.Trigger.Repo.Repo, "commit", ciRun.Trigger.Commit.ID)
		props.BranchURL = h.githubURL(ciRun.Trigger.Repo.Owner, ciRun.Trigger.Repo.Repo, "tree", ciRun.Trigger.Branch)
	}
	helpers.Render(page("update.tmpl", pageData{
		Title: "update",
		Breadcrumbs: []breadcrumb{
			{Name: "updates", Link: paths.Updates(update.StageID)},
			{Name: "update"},
		},
		Content: props,
	}), w, r)
}
