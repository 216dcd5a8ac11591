package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusql/internal/catalog"
	"campusql/internal/service"
	"campusql/internal/store"
	"campusql/internal/testutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.OpenDisk(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	svc := service.New(catalog.Open(st), &testutil.FakeGeocoder{Lat: 49.26, Lon: -123.25})
	return New(":0", svc)
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sectionsZip(t *testing.T) []byte {
	t.Helper()
	course, err := json.Marshal(map[string]any{"result": []map[string]any{
		{"Avg": 92.0, "Pass": 30, "Fail": 1, "Audit": 0, "Year": 2016,
			"Subject": "cpsc", "Course": "310", "Professor": "hoare",
			"Title": "software eng", "id": "5001"},
	}})
	require.NoError(t, err)
	return testutil.ZipBytes(t, map[string]string{
		"courses/":        "",
		"courses/CPSC310": string(course),
	})
}

func TestEcho(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := do(t, h, http.MethodGet, "/echo/hello", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello...hello", decodeBody(t, rec)["result"])
}

func TestDatasetLifecycle(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodPut, "/dataset/courses/sections", sectionsZip(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []any{"courses"}, decodeBody(t, rec)["result"])

	rec = do(t, h, http.MethodGet, "/datasets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list, ok := decodeBody(t, rec)["result"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	info := list[0].(map[string]any)
	assert.Equal(t, "courses", info["id"])
	assert.Equal(t, "sections", info["kind"])
	assert.Equal(t, 1.0, info["numRows"])

	query := `{"WHERE": {}, "OPTIONS": {"COLUMNS": ["courses_dept", "courses_avg"]}}`
	rec = do(t, h, http.MethodPost, "/query", []byte(query))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rows, ok := decodeBody(t, rec)["result"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{"courses_dept": "cpsc", "courses_avg": 92.0}, rows[0])

	rec = do(t, h, http.MethodDelete, "/dataset/courses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "courses", decodeBody(t, rec)["result"])
}

func TestAddDatasetRejectsBadArchive(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodPut, "/dataset/courses/sections", []byte("not a zip"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")
}

func TestAddDatasetRejectsBadKind(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodPut, "/dataset/courses/lectures", sectionsZip(t))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveAbsentDatasetIs404(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodDelete, "/dataset/ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")
}

func TestQueryInvalidDocumentIs400(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/query", []byte(`{"WHERE": {}}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/query", []byte(`{broken`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEmptyResultIsArray(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodPut, "/dataset/courses/sections", sectionsZip(t))
	require.Equal(t, http.StatusOK, rec.Code)

	query := `{"WHERE": {"GT": {"courses_avg": 100}}, "OPTIONS": {"COLUMNS": ["courses_dept"]}}`
	rec = do(t, h, http.MethodPost, "/query", []byte(query))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"result":[]`), rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodOptions, "/query", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
