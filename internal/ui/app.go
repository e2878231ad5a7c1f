package ui

import (
	"net/http"

	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/apprepo"
	"github.com/leg100/console/internal/http/decode"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/ui/helpers"
	"github.com/leg100/console/internal/ui/paths"
)

type (
	appListProps struct {
		Apps    []appWithStages
		Deploys bool
	}

	appWithStages struct {
		App    *app.App
		Stages []*app.Stage
	}

	appRepoProps struct {
		App     *app.App
		AppRepo *apprepo.AppRepo
	}
)

func (h *Handlers) listApps(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Apps.ListApps(r.Context())
	if err != nil {
		helpers.Error(r, w, err.Error())
		return
	}
	props := appListProps{
		Apps:    make([]appWithStages, len(apps)),
		Deploys: h.Flags.FromRequest(r).Deploys,
	}
	for i, a := range apps {
		stages, err := h.Apps.ListStages(r.Context(), a.ID)
		if err != nil {
			helpers.Error(r, w, err.Error())
			return
		}
		props.Apps[i] = appWithStages{App: a, Stages: stages}
	}
	helpers.Render(page("apps.tmpl", pageData{Title: "apps", Content: props}), w, r)
}

func (h *Handlers) getAppRepo(w http.ResponseWriter, r *http.Request) {
	appID, err := decode.ID("app_id", r)
	if err != nil {
		helpers.Error(r, w, err.Error(), helpers.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	a, err := h.Apps.GetApp(r.Context(), appID)
	if err != nil {
		helpers.Error(r, w, err.Error(), withErrorStatus(err))
		return
	}
	props := appRepoProps{App: a}
	if repo, err := h.AppRepos.GetByAppID(r.Context(), appID); err == nil {
		props.AppRepo = repo
	} else if !isNotFound(err) {
		helpers.Error(r, w, err.Error())
		return
	}
	helpers.Render(page("app_repos.tmpl", pageData{
		Title:       a.Name + " | repo",
		Breadcrumbs: []breadcrumb{{Name: a.Name}, {Name: "repo"}},
		Content:     props,
	}), w, r)
}

func (h *Handlers) connectAppRepo(w http.ResponseWriter, r *http.Request) {
	var params struct {
		AppID         resource.ID `schema:"app_id,required"`
		RepoID        int64       `schema:"repo_id,required"`
		BranchPattern string      `schema:"branch_pattern"`
		StageName     string      `schema:"stage_name"`
	}
	if err := decode.All(&params, r); err != nil {
		helpers.Error(r, w, err.Error(), helpers.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	repo, err := h.AppRepos.Connect(r.Context(), apprepo.ConnectOptions{
		AppID:         params.AppID,
		Type:          apprepo.GithubType,
		RepoID:        params.RepoID,
		BranchPattern: params.BranchPattern,
		StageName:     params.StageName,
	})
	if err != nil {
		helpers.Error(r, w, err.Error())
		return
	}
	helpers.FlashSuccess(w, "connected repo")
	http.Redirect(w, r, paths.AppRepos(repo.AppID), http.StatusFound)
}

func (h *Handlers) disconnectAppRepo(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("app_repo_id", r)
	if err != nil {
		helpers.Error(r, w, err.Error(), helpers.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	repo, err := h.AppRepos.GetByID(r.Context(), id)
	if err != nil {
		helpers.Error(r, w, err.Error(), withErrorStatus(err))
		return
	}
	if err := h.AppRepos.Disconnect(r.Context(), id); err != nil {
		helpers.Error(r, w, err.Error())
		return
	}
	helpers.FlashSuccess(w, "disconnected repo")
	http.Redirect(w, r, paths.AppRepos(repo.AppID), http.StatusFound)
}
