package apprepo

import (
	"testing"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppRepo(t *testing.T) {
	wsID := resource.NewID(resource.WorkspaceKind)
	appID := resource.NewID(resource.AppKind)

	t.Run("defaults", func(t *testing.T) {
		repo, err := newAppRepo(wsID, ConnectOptions{AppID: appID, RepoID: 123})
		require.NoError(t, err)
		assert.Equal(t, GithubType, repo.Type)
		assert.Equal(t, DefaultBranchPattern, repo.BranchPattern)
		assert.Equal(t, resource.AppRepoKind, repo.ID.Kind)
	})

	t.Run("given id", func(t *testing.T) {
		id := resource.NewID(resource.AppRepoKind)
		repo, err := newAppRepo(wsID, ConnectOptions{ID: &id, AppID: appID, RepoID: 123})
		require.NoError(t, err)
		assert.Equal(t, id, repo.ID)
	})

	t.Run("missing repo id", func(t *testing.T) {
		_, err := newAppRepo(wsID, ConnectOptions{AppID: appID})
		var missing *internal.ErrMissingParameter
		assert.ErrorAs(t, err, &missing)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := newAppRepo(wsID, ConnectOptions{AppID: appID, RepoID: 123, Type: "gitlab"})
		var invalid internal.InvalidParameterError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := newAppRepo(wsID, ConnectOptions{AppID: appID, RepoID: 123, BranchPattern: "[main"})
		var invalid internal.InvalidParameterError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestAppRepo_Matches(t *testing.T) {
	tests := []struct {
		pattern string
		branch  string
		want    bool
	}{
		{"*", "main", true},
		{"*", "feature/login", true},
		{"main", "main", true},
		{"main", "dev", false},
		{"release/*", "release/v1", true},
		{"{main,dev}", "dev", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.branch, func(t *testing.T) {
			repo := &AppRepo{BranchPattern: tt.pattern}
			assert.Equal(t, tt.want, repo.Matches(tt.branch))
		})
	}
}

func TestAppRepo_Stage(t *testing.T) {
	assert.Equal(t, "main", (&AppRepo{}).Stage("main"))
	assert.Equal(t, "production", (&AppRepo{StageName: "production"}).Stage("main"))
}
