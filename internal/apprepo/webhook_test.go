package apprepo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/run"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pushPayload = `{
  "ref": "refs/heads/main",
  "after": "0123456789abcdef0123456789abcdef01234567",
  "repository": {"id": 123, "name": "console", "owner": {"login": "sst", "name": "sst"}},
  "head_commit": {"id": "0123456789abcdef0123456789abcdef01234567", "message": "fix things"},
  "sender": {"id": 42, "login": "bob"}
}`

type (
	fakeRepoStore struct {
		connections []*AppRepo
		lastEvent   *run.Trigger
		errors      []SetLastEventErrorOptions
	}

	fakeStageLister struct {
		stages []*app.Stage
	}

	fakeRunCreator struct {
		created []resource.ID
		actors  []authz.Actor
	}
)

func (f *fakeRepoStore) ListByRepo(context.Context, string, int64) ([]*AppRepo, error) {
	return f.connections, nil
}

func (f *fakeRepoStore) SetLastEvent(_ context.Context, _ int64, trigger run.Trigger) error {
	f.lastEvent = &trigger
	return nil
}

func (f *fakeRepoStore) SetLastEventError(_ context.Context, opts SetLastEventErrorOptions) error {
	f.errors = append(f.errors, opts)
	return nil
}

func (f *fakeStageLister) ListStages(_ context.Context, appID resource.ID) ([]*app.Stage, error) {
	var stages []*app.Stage
	for _, s := range f.stages {
		if s.AppID == appID {
			stages = append(stages, s)
		}
	}
	return stages, nil
}

func (f *fakeRunCreator) Create(ctx context.Context, stageID resource.ID, _ run.Trigger) (*run.Run, error) {
	actor, _ := authz.ActorFromContext(ctx)
	f.actors = append(f.actors, actor)
	f.created = append(f.created, stageID)
	return &run.Run{StageID: stageID}, nil
}

func signedRequest(t *testing.T, secret, event, body string) *http.Request {
	t.Helper()

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	r := httptest.NewRequest("POST", "/webhooks/github", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-GitHub-Event", event)
	r.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return r
}

func TestWebhook(t *testing.T) {
	wsID := resource.NewID(resource.WorkspaceKind)
	matching := &AppRepo{
		WorkspaceID:   wsID,
		AppID:         resource.NewID(resource.AppKind),
		RepoID:        123,
		BranchPattern: "*",
		StageName:     "production",
	}
	nonMatching := &AppRepo{
		WorkspaceID:   wsID,
		AppID:         resource.NewID(resource.AppKind),
		RepoID:        123,
		BranchPattern: "release/*",
	}
	missingStage := &AppRepo{
		WorkspaceID:   wsID,
		AppID:         resource.NewID(resource.AppKind),
		RepoID:        123,
		BranchPattern: "*",
	}
	prodUS := &app.Stage{ID: resource.NewID(resource.StageKind), AppID: matching.AppID, Name: "production", Region: "us-east-1"}
	prodEU := &app.Stage{ID: resource.NewID(resource.StageKind), AppID: matching.AppID, Name: "production", Region: "eu-west-1"}
	dev := &app.Stage{ID: resource.NewID(resource.StageKind), AppID: matching.AppID, Name: "dev", Region: "us-east-1"}

	repos := &fakeRepoStore{connections: []*AppRepo{matching, nonMatching, missingStage}}
	runs := &fakeRunCreator{}
	h := &webhookHandler{
		Logger: logr.Discard(),
		secret: "s3cr3t",
		repos:  repos,
		apps:   &fakeStageLister{stages: []*app.Stage{prodUS, prodEU, dev}},
		runs:   runs,
	}

	w := httptest.NewRecorder()
	h.handle(w, signedRequest(t, "s3cr3t", "push", pushPayload))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.NotNil(t, repos.lastEvent)
	assert.Equal(t, run.Trigger{
		Source: "github",
		Repo:   run.TriggerRepo{ID: 123, Owner: "sst", Repo: "console"},
		Branch: "main",
		Commit: run.TriggerCommit{ID: "0123456789abcdef0123456789abcdef01234567", Message: "fix things"},
		Sender: run.TriggerSender{ID: 42, Username: "bob"},
	}, *repos.lastEvent)

	// one run per region of the production stage
	assert.Equal(t, []resource.ID{prodUS.ID, prodEU.ID}, runs.created)
	for _, actor := range runs.actors {
		assert.Equal(t, &authz.System{WorkspaceID: wsID}, actor)
	}

	// app without a stage named after the branch records an error
	require.Len(t, repos.errors, 1)
	assert.Equal(t, missingStage.AppID, *repos.errors[0].AppID)
	assert.Equal(t, "no stage found named main", repos.errors[0].Error)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	h := &webhookHandler{Logger: logr.Discard(), secret: "s3cr3t"}

	w := httptest.NewRecorder()
	h.handle(w, signedRequest(t, "wrong", "push", pushPayload))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_IgnoredEvents(t *testing.T) {
	tests := []struct {
		name  string
		event string
		body  string
	}{
		{"ping", "ping", `{"zen": "keep it simple"}`},
		{"tag push", "push", `{"ref": "refs/tags/v1.0.0", "repository": {"id": 123}}`},
		{"branch deleted", "push", `{"ref": "refs/heads/old", "deleted": true, "repository": {"id": 123}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := &fakeRepoStore{}
			h := &webhookHandler{Logger: logr.Discard(), secret: "s3cr3t", repos: repos}

			w := httptest.NewRecorder()
			h.handle(w, signedRequest(t, "s3cr3t", tt.event, tt.body))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Nil(t, repos.lastEvent)
		})
	}
}
