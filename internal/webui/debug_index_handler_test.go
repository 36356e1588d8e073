package webui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mmt.ticketoffice.org/internal/app"
	"mmt.ticketoffice.org/internal/appconf"
	"mmt.ticketoffice.org/internal/ticketoffice"
	"mmt.ticketoffice.org/mmtdb"
)

func newTestRouter(t *testing.T, store ticketoffice.Store) *httprouter.Router {
	t.Helper()
	office := ticketoffice.New(nil)
	_, err := office.Import(strings.NewReader(
		"SERVICE|1|100|08:00|Lisboa|10:00|Porto\nPASSENGER|Ana\nITINERARY|0|2017-11-20|1/Lisboa/Porto\n"))
	require.NoError(t, err)

	webUI := &WebUI{Application: app.New(appconf.Default(), nil, office, store)}
	router := httprouter.New()
	webUI.SetWebUIRoutes(router)
	return router
}

func TestDebugIndexHandler(t *testing.T) {
	router := newTestRouter(t, nil)

	testCases := []struct {
		dataType string
		title    string
		contains string
	}{
		{"services", "Services", "Lisboa"},
		{"passengers", "Passengers", "Ana"},
		{"itineraries", "Itineraries by passenger", "2017-11-20"},
		{"state", "Office state", "UnsavedChanges: (bool) true"},
		{"", "Choose a data type", "Please use one of the following"},
	}

	for _, tc := range testCases {
		t.Run(tc.title, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/?dataType="+tc.dataType, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			body := rec.Body.String()
			assert.Contains(t, body, "<title>"+tc.title+"</title>")
			assert.Contains(t, body, tc.contains)
			assert.Contains(t, body, `href="?dataType=state"`)
		})
	}
}

func TestDebugStateWithStore(t *testing.T) {
	client, err := mmtdb.NewClient(mmtdb.NewConfig(":memory:", appconf.Test, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	router := newTestRouter(t, client)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/?dataType=state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "StoredRows")
	assert.Contains(t, rec.Body.String(), "services")
}
