package decode

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	type params struct {
		StageID resource.ID `schema:"stage_id,required"`
		Command string      `schema:"command"`
		Page    int         `schema:"page[number]"`
	}
	stageID := resource.NewID(resource.StageKind)

	r := httptest.NewRequest("POST", "/?page[number]=2", strings.NewReader(url.Values{"command": {"deploy"}}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = mux.SetURLVars(r, map[string]string{"stage_id": stageID.String()})

	var got params
	require.NoError(t, All(&got, r))
	assert.Equal(t, params{StageID: stageID, Command: "deploy", Page: 2}, got)
}

func TestParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/?name=dev", nil)

	got, err := Param("name", r)
	require.NoError(t, err)
	assert.Equal(t, "dev", got)

	_, err = Param("region", r)
	var missing *internal.ErrMissingParameter
	assert.ErrorAs(t, err, &missing)
}

func TestID(t *testing.T) {
	id := resource.NewID(resource.RunKind)
	r := mux.SetURLVars(httptest.NewRequest("GET", "/", nil), map[string]string{"run_id": id.String()})

	got, err := ID("run_id", r)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
