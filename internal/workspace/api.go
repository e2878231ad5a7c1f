package workspace

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

	r.HandleFunc("/workspaces", a.create).Methods("POST")
	r.HandleFunc("/workspaces", a.list).Methods("GET")
	r.HandleFunc("/workspaces/{slug}", a.get).Methods("GET")
}

func (a *api) create(w http.ResponseWriter, r *http.Request) {
	var params types.WorkspaceCreateOptions
	if err := consoleapi.Unmarshal(r.Body, &params); err != nil {
		consoleapi.Error(w, err)
		return
	}
	ws, err := a.Create(r.Context(), CreateOptions{Slug: &params.Slug})
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(ws), http.StatusCreated)
}

func (a *api) list(w http.ResponseWriter, r *http.Request) {
	list, err := a.List(r.Context())
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	items := make([]*types.Workspace, len(list))
	for i, ws := range list {
		items[i] = toType(ws)
	}
	consoleapi.Respond(w, items, http.StatusOK)
}

func (a *api) get(w http.ResponseWriter, r *http.Request) {
	slug, err := decode.Param("slug", r)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	ws, err := a.GetBySlug(r.Context(), slug)
	if err != nil {
		consoleapi.Error(w, err)
		return
	}
	consoleapi.Respond(w, toType(ws), http.StatusOK)
}

func toType(ws *Workspace) *types.Workspace {
	return &types.Workspace{
		ID:        ws.ID.String(),
		Slug:      ws.Slug,
		CreatedAt: ws.CreatedAt,
	}
}
