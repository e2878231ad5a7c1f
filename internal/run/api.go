package run

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
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

	r.HandleFunc("/stages/{stage_id}/runs", a.create).Methods("POST")
	r.HandleFunc("/stages/{stage_id}/runs", a.list).Methods("GET")
	r.HandleFunc("/runs/{run_id}", a.get).Methods("GET")
	r.HandleFunc("/runs/{run_id}/started", a.started).Methods("POST")
	r.HandleFunc("/runs/{run_id}/completed", a.completed).Methods("POST")
	r.HandleFunc("/runs/{run_id}/logs", a.appendLogs).Methods("PUT")
	r.HandleFunc("/runs/{run_id}/logs", a.getLogs).Methods("GET")
}

func (a *api) create(w http.ResponseWriter, r *http.Request) {
	stageID, err := decode.ID("stage_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var trigger Trigger
	if err := decode.JSON(&trigger, r); err != nil {
		consoleapi.Error(w, err, consoleapi.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	run, err := a.Create(r.Context(), stageID, trigger)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(run), http.StatusCreated)
}

func (a *api) list(w http.ResponseWriter, r *http.Request) {
	stageID, err := decode.ID("stage_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var opts resource.PageOptions
	if err := decode.Query(&opts, r.URL.Query()); err != nil {
		consoleapi.Error(w, err)
		return
	}
	page, err := a.ListByStage(r.Context(), stageID, opts)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	items := make([]*types.Run, len(page.Items))
	for i, run := range page.Items {
		items[i] = toType(run)
	}
	consoleapi.RespondWithPage(w, items, page.Pagination)
}

func (a *api) get(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("run_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	run, err := a.Get(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(run), http.StatusOK)
}

func (a *api) started(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("run_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var params types.RunStartedOptions
	if err := decode.JSON(&params, r); err != nil {
		consoleapi.Error(w, err, consoleapi.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	err = a.ReportStarted(r.Context(), StartedOptions{
		RunID:        id,
		AWSRequestID: params.AWSRequestID,
		LogGroup:     params.LogGroup,
		LogStream:    params.LogStream,
	})
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *api) completed(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("run_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var params types.RunCompletedOptions
	if err := decode.JSON(&params, r); err != nil {
		consoleapi.Error(w, err, consoleapi.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	run, err := a.Completed(r.Context(), CompletedOptions{RunID: id, Error: params.Error})
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(run), http.StatusOK)
}

func (a *api) appendLogs(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("run_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	opts := AppendLogsOptions{RunID: id}
	if err := decode.Query(&opts, r.URL.Query()); err != nil {
		consoleapi.Error(w, err)
		return
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, http.MaxBytesReader(w, r.Body, MaxChunkSize)); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			err = internal.ErrUploadTooLarge
		}
		consoleapi.Error(w, err)
		return
	}
	opts.Data = buf.Bytes()
	if err := a.AppendLogs(r.Context(), opts); err != nil {
		consoleapi.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) getLogs(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("run_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	logs, err := a.GetLogs(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(logs)
}

func toType(run *Run) *types.Run {
	return &types.Run{
		ID:            run.ID.String(),
		StageID:       run.StageID.String(),
		Branch:        run.Trigger.Branch,
		CommitID:      run.Trigger.Commit.ID,
		CommitMessage: run.Trigger.Commit.Message,
		Status:        string(run.Status()),
		Error:         run.Error,
		TimeCreated:   run.TimeCreated,
		TimeStarted:   run.TimeStarted,
		TimeCompleted: run.TimeCompleted,
		LogGroup:      run.LogGroup,
		LogStream:     run.LogStream,
	}
}
