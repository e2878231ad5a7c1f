package apprepo

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

	r.HandleFunc("/apps/{app_id}/repo", a.connect).Methods("POST")
	r.HandleFunc("/apps/{app_id}/repo", a.get).Methods("GET")
	r.HandleFunc("/app-repos/{app_repo_id}", a.disconnect).Methods("DELETE")
}

func (a *api) connect(w http.ResponseWriter, r *http.Request) {
	appID, err := decode.ID("app_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	var params types.AppRepoConnectOptions
	if err := consoleapi.Unmarshal(r.Body, &params); err != nil {
		consoleapi.Error(w, err)
		return
	}
	repo, err := a.Connect(r.Context(), ConnectOptions{
		AppID:         appID,
		Type:          GithubType,
		RepoID:        params.RepoID,
		BranchPattern: params.BranchPattern,
		StageName:     params.StageName,
	})
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(repo), http.StatusCreated)
}

func (a *api) get(w http.ResponseWriter, r *http.Request) {
	appID, err := decode.ID("app_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	repo, err := a.GetByAppID(r.Context(), appID)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(repo), http.StatusOK)
}

func (a *api) disconnect(w http.ResponseWriter, r *http.Request) {
	id, err := decode.ID("app_repo_id", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	if err := a.Disconnect(r.Context(), id); err != nil {
		consoleapi.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toType(repo *AppRepo) *types.AppRepo {
	return &types.AppRepo{
		ID:             repo.ID.String(),
		AppID:          repo.AppID.String(),
		Type:           repo.Type,
		RepoID:         repo.RepoID,
		BranchPattern:  repo.BranchPattern,
		StageName:      repo.StageName,
		LastEventError: repo.LastEventError,
		TimeLastEvent:  repo.TimeLastEvent,
	}
}
