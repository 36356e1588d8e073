package utils

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIDFromParams(t *testing.T) {
	testCases := []struct {
		name string
		id   string
		want string
	}{
		{name: "Basic ID", id: "123", want: "123"},
		{name: "ID with JSON extension", id: "456.json", want: "456"},
		{name: "ID with multiple dots", id: "789.data.json", want: "789.data"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()

			var result string
			router.HandlerFunc(http.MethodGet, "/api/test/:id", func(w http.ResponseWriter, r *http.Request) {
				result = ExtractIDFromParams(r, "id")
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/test/"+tc.id, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.want, result, "ExtractIDFromParams should correctly extract and clean the ID")
		})
	}
}

func TestExtractIntFromParams(t *testing.T) {
	router := httprouter.New()

	var got int
	var gotErr error
	router.HandlerFunc(http.MethodGet, "/passengers/:id", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = ExtractIntFromParams(r, "id")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/passengers/12.json", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, 12, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/passengers/ana", nil))
	assert.EqualError(t, gotErr, `invalid id "ana"`)
}

func TestParseIntParam(t *testing.T) {
	params := url.Values{"choice": {"2"}, "bad": {"two"}}

	n, fieldErrors := ParseIntParam(params, "choice", -1, nil)
	assert.Equal(t, 2, n)
	assert.Empty(t, fieldErrors)

	n, fieldErrors = ParseIntParam(params, "missing", -1, fieldErrors)
	assert.Equal(t, -1, n)
	assert.Empty(t, fieldErrors)

	n, fieldErrors = ParseIntParam(params, "bad", -1, fieldErrors)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{`Invalid field value for field "bad".`}, fieldErrors["bad"])
}

func TestRequireParam(t *testing.T) {
	params := url.Values{"from": {" Lisboa "}, "to": {"  "}}

	from, fieldErrors := RequireParam(params, "from", nil)
	assert.Equal(t, "Lisboa", from)
	assert.Empty(t, fieldErrors)

	_, fieldErrors = RequireParam(params, "to", fieldErrors)
	_, fieldErrors = RequireParam(params, "date", fieldErrors)
	assert.Len(t, fieldErrors, 2)
	assert.Equal(t, []string{`Missing required field "date".`}, fieldErrors["date"])
}
