package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offices = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"name": "Helvetia Zurich"}, "geometry": {"type": "Point", "coordinates": [8.5417, 47.3769]}},
	{"type": "Feature", "properties": {"name": "Baloise Basel"}, "geometry": {"type": "Point", "coordinates": [7.5886, 47.5596]}}
]}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := New(Config{Host: "localhost", Port: "0"})
	return srv
}

func do(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/geo+json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"geo-filter"`)
	assert.Contains(t, w.Header().Values("Link"), `</api/v1/dataset>; rel="dataset"`)

	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/nope", "").Code)
}

func TestLoadAndLinks(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/v1/dataset?name=offices.geojson", offices)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(srv, http.MethodGet, "/api/v1/dataset", "")
	require.Equal(t, http.StatusOK, w.Code)
	links := w.Header().Values("Link")
	assert.Contains(t, links, `</api/v1/dataset/export?attribute=name>; rel="export"; method="GET"; title="Download filtered GeoJSON"`)
	assert.Contains(t, links, `</api/v1/dataset>; rel="delete"; method="DELETE"; title="Unload dataset"`)

	w = do(srv, http.MethodGet, "/api/v1/dataset/table?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Values("Link"), `</api/v1/dataset/table?limit=1&offset=1>; rel="next"`)

	ds, err := srv.Datasets().Current()
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Info.FeatureCount)
}

func TestOpenAPIDocument(t *testing.T) {
	srv := newTestServer(t)

	oapi := srv.OpenAPI()
	for _, p := range []string{
		"/health", "/api/v1/info", "/api/v1/dataset", "/api/v1/dataset/table",
		"/api/v1/dataset/scene", "/api/v1/dataset/export", "/api/v1/tables",
		"/api/v1/query", "/api/v1/viewer/filter", "/api/v1/viewer/events",
	} {
		assert.Contains(t, oapi.Paths, p)
	}
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.(http.Flusher).Flush()
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.True(t, w.Flushed)
}
