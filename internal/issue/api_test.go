package issue

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_Ingest(t *testing.T) {
	ext := &fakeExtractor{fail: map[string]bool{"/aws/lambda/broken": true}}
	svc := &Service{Logger: logr.Discard()}
	svc.Subscriber = NewSubscriber(ext, SubscriberOptions{Logger: logr.Discard()})
	svc.api = &api{Service: svc}

	r := mux.NewRouter()
	svc.AddHandlers(r)

	arrival := float64(time.Now().Unix())
	record := func(id, logGroup string) string {
		data := gzipJSON(t, LogsData{MessageType: DataMessage, LogGroup: logGroup})
		return fmt.Sprintf(`{"eventID":%q,"kinesis":{"data":%q,"approximateArrivalTimestamp":%f}}`,
			id, base64.StdEncoding.EncodeToString(data), arrival)
	}
	body := `{"Records":[` + record("shardId-000:1", "/aws/lambda/api") + `,` + record("shardId-000:2", "/aws/lambda/broken") + `]}`

	req := httptest.NewRequest("POST", "/api/issues/ingest", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []ItemFailure{{ItemIdentifier: "shardId-000:2"}}, resp.BatchItemFailures)
	assert.Equal(t, []string{"/aws/lambda/api"}, ext.extracted)
}

func TestAPI_IngestMalformed(t *testing.T) {
	svc := &Service{Logger: logr.Discard()}
	svc.Subscriber = NewSubscriber(&fakeExtractor{}, SubscriberOptions{Logger: logr.Discard()})
	svc.api = &api{Service: svc}

	r := mux.NewRouter()
	svc.AddHandlers(r)

	req := httptest.NewRequest("POST", "/api/issues/ingest", strings.NewReader(`{"Records":`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
