package app

import (
	"net/http"

	"github.com/gorilla/mux"
	consoleapi "github.com/leg100/console/internal/api"
	"github.com/leg100/console/internal/api/types"
	consolehttp "github.com/leg100/console/internal/http"
	"github.com/leg100/console/internal/http/decode"
)

type api struct {
	*Service
}

func (a *api) addHandlers(r *mux.Router) {
	r = consolehttp.APIRouter(r)

	r.HandleFunc("/apps", a.createApp).Methods("POST")
	r.HandleFunc("/apps", a.listApps).Methods("GET")
	r.HandleFunc("/apps/{app_id}", a.getApp).Methods("GET")
	r.HandleFunc("/apps/{app_id}/stages", a.createStage).Methods("POST")
	r.HandleFunc("/apps/{app_id}/stages", a.listStages).Methods("GET")
	r.HandleFunc("/stages/{stage_id}", a.getStage).Methods("GET")
}

func (a *api) createApp(w http.ResponseWriter, r *http.Request) {
	var params types.AppCreateOptions
	if err := consoleapi.Unmarshal(r.Body, &params); err != nil {
		consoleapi.Error(w, err)
		return
	}
	app, err := a.CreateApp(r.Context(), CreateAppOptions{Name: &params.Name})
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toAppType(app), http.StatusCreated)
}

func (a *api) listApps(w http.ResponseWriter, r *http.Request) {
	apps, err := a.ListApps(r.Context())
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	items := make([]*types.App, len(apps))
	for i, app := range apps {
		items[i] = toAppType(app)
	}
	consoleapi.Respond(w, items, http.StatusOK)
}

func (a *api) getApp(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("app_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	app, err := a.GetApp(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toAppType(app), http.StatusOK)
}

func (a *api) createStage(w http.ResponseWriter, r *http.Request) {
	appID, err := decode.ID("app_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var params types.StageCreateOptions
	if err := consoleapi.Unmarshal(r.Body, &params); err != nil {
		consoleapi.Error(w, err)
		return
	}
	stage, err := a.CreateStage(r.Context(), appID, CreateStageOptions{
		Name:   &params.Name,
		Region: params.Region,
	})
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toStageType(stage), http.StatusCreated)
}

func (a *api) listStages(w http.ResponseWriter, r *http.Request) {
	appID, err := decode.ID("app_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	stages, err := a.ListStages(r.Context(), appID)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	items := make([]*types.Stage, len(stages))
	for i, stage := range stages {
		items[i] = toStageType(stage)
	}
	consoleapi.Respond(w, items, http.StatusOK)
}

func (a *api) getStage(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("stage_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	stage, err := a.GetStage(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toStageType(stage), http.StatusOK)
}

func toAppType(app *App) *types.App {
	return &types.App{
		ID:        app.ID.String(),
		Name:      app.Name,
		CreatedAt: app.CreatedAt,
	}
}

func toStageType(stage *Stage) *types.Stage {
	return &types.Stage{
		ID:        stage.ID.String(),
		AppID:     stage.AppID.String(),
		Name:      stage.Name,
		Region:    stage.Region,
		CreatedAt: stage.CreatedAt,
	}
}
