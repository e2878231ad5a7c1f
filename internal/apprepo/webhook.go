package apprepo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v65/github"
	"github.com/gorilla/mux"
	"github.com/leg100/console/internal/authz"
	consolehttp "github.com/leg100/console/internal/http"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/run"
)

// errIgnoreEvent is returned for events that do not trigger runs.
var errIgnoreEvent = errors.New("ignoring event")

type (
	// webhookHandler receives github push events and creates a run for each
	// stage deployed by the push.
	webhookHandler struct {
		logr.Logger

		secret string
		repos  repoStore
		apps   stageLister
		runs   runCreator
	}

	repoStore interface {
		ListByRepo(ctx context.Context, typ string, repoID int64) ([]*AppRepo, error)
		SetLastEvent(ctx context.Context, repoID int64, trigger run.Trigger) error
		SetLastEventError(ctx context.Context, opts SetLastEventErrorOptions) error
	}
)

func (h *webhookHandler) addHandlers(r *mux.Router) {
	r.HandleFunc(consolehttp.WebhookPrefix+"/github", h.handle).Methods("POST")
}

func (h *webhookHandler) handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.secret))
	if err != nil {
		h.Error(err, "validating webhook payload")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	raw, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.Error(err, "parsing webhook payload")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	trigger, err := newTrigger(raw)
	if errors.Is(err, errIgnoreEvent) {
		h.V(2).Info(err.Error())
		w.WriteHeader(http.StatusOK)
		return
	} else if err != nil {
		h.Error(err, "handling github event")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := authz.WithActor(r.Context(), &authz.Public{})
	if err := h.trigger(ctx, trigger); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// trigger records the push on the repo's connections and creates a run for
// each matching stage of each connected app.
func (h *webhookHandler) trigger(ctx context.Context, trigger run.Trigger) error {
	repoID := trigger.Repo.ID
	if err := h.repos.SetLastEvent(ctx, repoID, trigger); err != nil {
		return err
	}
	connections, err := h.repos.ListByRepo(ctx, GithubType, repoID)
	if err != nil {
		return err
	}
	for _, conn := range connections {
		if !conn.Matches(trigger.Branch) {
			h.V(2).Info("branch does not match pattern", "repo", conn, "branch", trigger.Branch)
			continue
		}
		// act within the connection's workspace
		ctx := authz.WithActor(ctx, &authz.System{WorkspaceID: conn.WorkspaceID})
		if err := h.triggerApp(ctx, conn, trigger); err != nil {
			h.Error(err, "triggering run", "repo", conn)
			err := h.repos.SetLastEventError(ctx, SetLastEventErrorOptions{
				AppID:  &conn.AppID,
				RepoID: repoID,
				Error:  err.Error(),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *webhookHandler) triggerApp(ctx context.Context, conn *AppRepo, trigger run.Trigger) error {
	stages, err := h.apps.ListStages(ctx, conn.AppID)
	if err != nil {
		return err
	}
	name := conn.Stage(trigger.Branch)
	var created int
	for _, stage := range stages {
		if stage.Name != name {
			continue
		}
		if _, err := h.runs.Create(ctx, stage.ID, trigger); err != nil {
			return err
		}
		created++
	}
	if created == 0 {
		return fmt.Errorf("no stage found named %s", name)
	}
	h.V(0).Info("triggered runs", "repo", conn, "stage", name, "count", created)
	return nil
}

// newTrigger converts a github push event into a run trigger.
func newTrigger(raw any) (run.Trigger, error) {
	event, ok := raw.(*github.PushEvent)
	if !ok {
		return run.Trigger{}, fmt.Errorf("%w: unsupported event: %T", errIgnoreEvent, raw)
	}
	branch, found := strings.CutPrefix(event.GetRef(), "refs/heads/")
	if !found {
		return run.Trigger{}, fmt.Errorf("%w: not a branch push: %s", errIgnoreEvent, event.GetRef())
	}
	if event.GetDeleted() {
		return run.Trigger{}, fmt.Errorf("%w: branch deleted: %s", errIgnoreEvent, branch)
	}
	owner := event.GetRepo().GetOwner().GetLogin()
	if owner == "" {
		owner = event.GetRepo().GetOwner().GetName()
	}
	trigger := run.Trigger{
		Source: GithubType,
		Repo: run.TriggerRepo{
			ID:    event.GetRepo().GetID(),
			Owner: owner,
			Repo:  event.GetRepo().GetName(),
		},
		Branch: branch,
		Commit: run.TriggerCommit{
			ID:      event.GetAfter(),
			Message: event.GetHeadCommit().GetMessage(),
		},
		Sender: run.TriggerSender{
			ID:       event.GetSender().GetID(),
			Username: event.GetSender().GetLogin(),
		},
	}
	if trigger.Repo.ID == 0 {
		return run.Trigger{}, errors.New("push event missing repo id")
	}
	return trigger, nil
}

// compile-time check
var _ repoStore = (*Service)(nil)
