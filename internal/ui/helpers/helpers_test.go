package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashes(t *testing.T) {
	w := httptest.NewRecorder()
	FlashSuccess(w, "connected repo")

	r := httptest.NewRequest("GET", "/app/apps", nil)
	for _, cookie := range w.Result().Cookies() {
		r.AddCookie(cookie)
	}

	w = httptest.NewRecorder()
	flashes, err := PopFlashes(r, w)
	require.NoError(t, err)
	assert.Equal(t, []Flash{{Type: FlashSuccessType, Message: "connected repo"}}, flashes)
	assert.Equal(t, "flash flash-success", flashes[0].Class())

	// popping purges the cookie
	purged := w.Result().Cookies()
	require.Len(t, purged, 1)
	assert.Equal(t, -1, purged[0].MaxAge)
}

func TestError(t *testing.T) {
	t.Run("page navigation", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/app/updates/upd-123", nil)
		w := httptest.NewRecorder()
		Error(r, w, "not found", WithStatus(http.StatusNotFound))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "<pre>not found</pre>")
	})

	t.Run("form submission", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/app/issues/iss-123/resolve", nil)
		r.Header.Set("Referer", "/app/stages/stage-123/issues")
		w := httptest.NewRecorder()
		Error(r, w, "boom")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/app/stages/stage-123/issues", w.Header().Get("Location"))
		assert.NotEmpty(t, w.Result().Cookies())
	})
}
