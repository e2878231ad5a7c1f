package state

import (
	"net/http"

	"github.com/gorilla/mux"
	consoleapi "github.com/leg100/console/internal/api"
	"github.com/leg100/console/internal/api/types"
	consolehttp "github.com/leg100/console/internal/http"
	"github.com/leg100/console/internal/http/decode"
	"github.com/leg100/console/internal/resource"
)

type api struct {
	*Service
}

func (a *api) addHandlers(r *mux.Router) {
	r = consolehttp.APIRouter(r)

	r.HandleFunc("/stages/{stage_id}/updates", a.create).Methods("POST")
	r.HandleFunc("/stages/{stage_id}/updates", a.list).Methods("GET")
	r.HandleFunc("/updates/{update_id}", a.get).Methods("GET")
	r.HandleFunc("/updates/{update_id}/start", a.start).Methods("POST")
	r.HandleFunc("/updates/{update_id}/cancel", a.cancel).Methods("POST")
	r.HandleFunc("/updates/{update_id}/events", a.addEvents).Methods("POST")
	r.HandleFunc("/updates/{update_id}/events", a.listEvents).Methods("GET")
	r.HandleFunc("/updates/{update_id}/complete", a.complete).Methods("POST")
}

func (a *api) create(w http.ResponseWriter, r *http.Request) {
	stageID, err := decode.ID("stage_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var params types.UpdateCreateOptions
	if err := consoleapi.Unmarshal(r.Body, &params); err != nil {
		consoleapi.Error(w, err)
		return
	}
	opts := CreateUpdateOptions{
		StageID: stageID,
		Command: Command(params.Command),
		Source:  Source{Type: SourceType(params.SourceType)},
		Queued:  params.Queued,
	}
	if params.RunID != nil {
		runID, err := resource.ParseID(*params.RunID)
		if err != nil {
			consoleapi.Error(w, err)
			return
		}
		opts.Source.Properties.RunID = &runID
	}
	update, err := a.CreateUpdate(r.Context(), opts)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(update), http.StatusCreated)
}

func (a *api) list(w http.ResponseWriter, r *http.Request) {
	stageID, err := decode.ID("stage_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	updates, err := a.ListUpdates(r.Context(), stageID)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	items := make([]*types.Update, len(updates))
	for i, u := range updates {
		items[i] = toType(u)
	}
	consoleapi.Respond(w, items, http.StatusOK)
}

func (a *api) get(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("update_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	update, err := a.GetUpdate(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(update), http.StatusOK)
}

func (a *api) start(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("update_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	update, err := a.StartUpdate(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(update), http.StatusOK)
}

func (a *api) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("update_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	update, err := a.CancelUpdate(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(update), http.StatusOK)
}

func (a *api) addEvents(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("update_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var params []types.ResourceEventOptions
	if err := decode.JSON(&params, r); err != nil {
		consoleapi.Error(w, err, consoleapi.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	opts := make([]ResourceEventOptions, len(params))
	for i, p := range params {
		opts[i] = ResourceEventOptions{URN: p.URN, Type: p.Type, Action: Action(p.Action)}
	}
	if err := a.AddResourceEvents(r.Context(), id, opts...); err != nil {
		consoleapi.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listEvents(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("update_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	events, err := a.ListResourceEvents(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	items := make([]*types.ResourceEvent, len(events))
	for i, ev := range events {
		items[i] = &types.ResourceEvent{
			ID:          ev.ID.String(),
			URN:         ev.URN,
			Type:        ev.Type,
			Action:      string(ev.Action),
			TimeCreated: ev.TimeCreated,
		}
	}
	consoleapi.Respond(w, items, http.StatusOK)
}

func (a *api) complete(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("update_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var params types.UpdateCompleteOptions
	if err := decode.JSON(&params, r); err != nil {
		consoleapi.Error(w, err, consoleapi.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	errs := make([]Error, len(params.Errors))
	for i, e := range params.Errors {
		errs[i] = Error{URN: e.URN, Message: e.Message}
	}
	update, err := a.CompleteUpdate(r.Context(), id, errs)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(update), http.StatusOK)
}

func toType(u *Update) *types.Update {
	to := &types.Update{
		ID:              u.ID.String(),
		StageID:         u.StageID.String(),
		Index:           u.Index,
		Command:         string(u.Command),
		Status:          string(u.Status()),
		SourceType:      string(u.Source.Type),
		ResourceCreated: u.Resource.Created,
		ResourceUpdated: u.Resource.Updated,
		ResourceDeleted: u.Resource.Deleted,
		ResourceSame:    u.Resource.Same,
		Errors:          make([]types.UpdateError, len(u.Errors)),
		TimeCreated:     u.TimeCreated,
		TimeStarted:     u.TimeStarted,
		TimeCompleted:   u.TimeCompleted,
		TimeCanceled:    u.TimeCanceled,
		TimeQueued:      u.TimeQueued,
	}
	if runID, ok := u.RunID(); ok {
		to.RunID = new(runID.String())
	}
	for i, e := range u.Errors {
		to.Errors[i] = types.UpdateError{URN: e.URN, Message: e.Message}
	}
	return to
}
