package issue

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

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

	r.HandleFunc("/issues/ingest", a.ingest).Methods("POST")
	r.HandleFunc("/issues/log-groups", a.registerLogGroup).Methods("POST")
	r.HandleFunc("/issues/{issue_id}", a.get).Methods("GET")
	r.HandleFunc("/issues/{issue_id}/resolve", a.resolve).Methods("POST")
	r.HandleFunc("/stages/{stage_id}/issues", a.list).Methods("GET")
}

// ingest processes a batch of log stream records, responding with the
// records that should be retried.
func (a *api) ingest(w http.ResponseWriter, r *http.Request) {
	var batch types.IngestBatch
	if err := decode.JSON(&batch, r); err != nil {
		consoleapi.Error(w, err, consoleapi.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	resp := a.Process(r.Context(), toRecords(batch))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.Error(err, "encoding ingest response")
	}
}

func (a *api) registerLogGroup(w http.ResponseWriter, r *http.Request) {
	var params types.LogGroupRegisterOptions
	if err := decode.JSON(&params, r); err != nil {
		consoleapi.Error(w, err, consoleapi.WithStatus(http.StatusUnprocessableEntity))
		return
	}
	stageID, err := resource.ParseID(params.StageID)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	if err := a.RegisterLogGroup(r.Context(), stageID, params.LogGroup); err != nil {
		consoleapi.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) get(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("issue_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	issue, err := a.Get(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(issue), http.StatusOK)
}

func (a *api) resolve(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("issue_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	issue, err := a.Resolve(r.Context(), id)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(issue), http.StatusOK)
}

func (a *api) list(w http.ResponseWriter, r *http.Request) {
	stageID, err := decode.ID("stage_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var opts ListOptions
	if err := decode.Query(&opts, r.URL.Query()); err != nil {
		consoleapi.Error(w, err)
		return
	}
	page, err := a.ListByStage(r.Context(), stageID, opts)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	items := make([]*types.Issue, len(page.Items))
	for i, issue := range page.Items {
		items[i] = toType(issue)
	}
	consoleapi.RespondWithPage(w, items, page.Pagination)
}

func toRecords(batch types.IngestBatch) []Record {
	records := make([]Record, len(batch.Records))
	for i, rec := range batch.Records {
		secs, frac := math.Modf(rec.Kinesis.ApproximateArrivalTimestamp)
		records[i] = Record{
			ID:          rec.EventID,
			ArrivalTime: time.Unix(int64(secs), int64(frac*1e9)),
			Data:        rec.Kinesis.Data,
		}
	}
	return records
}

func toType(from *Issue) *types.Issue {
	return &types.Issue{
		ID:           from.ID.String(),
		StageID:      from.StageID.String(),
		Group:        from.Group,
		Error:        from.Error,
		Message:      from.Message,
		LogGroup:     from.LogGroup,
		Count:        from.Count,
		TimeSeen:     from.TimeSeen,
		TimeResolved: from.TimeResolved,
		TimeCreated:  from.TimeCreated,
	}
}
