package live_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/http/handlers/live"
	"github.com/aanand-mishra/student-directory/internal/match"
	"github.com/aanand-mishra/student-directory/internal/reference"
	"github.com/aanand-mishra/student-directory/internal/search"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

func setup(t *testing.T, limits search.Limits) *http.ServeMux {
	t.Helper()

	store := storage.New()
	store.ReplaceStudents([]types.Record{
		{"user_id": "2301001", "name": "Rajesh Kumar"},
		{"user_id": "2301002", "name": "Priya Sharma"},
	})
	svc := search.New(store, match.New(match.DefaultOptions()))
	reg := search.NewRegistry(svc, search.Delay{}, limits)
	t.Cleanup(reg.CloseAll)

	names := reference.New(store)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/live", live.Open(reg))
	mux.HandleFunc("POST /api/live/{id}/query", live.Submit(reg))
	mux.HandleFunc("GET /api/live/{id}", live.Get(reg, names))
	mux.HandleFunc("DELETE /api/live/{id}", live.Close(reg))
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func open(t *testing.T, mux *http.ServeMux) string {
	t.Helper()
	rr := do(mux, http.MethodPost, "/api/live", "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var opened live.Opened
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&opened))
	require.NotEmpty(t, opened.ID)
	return opened.ID
}

func view(t *testing.T, mux *http.ServeMux, id string) live.View {
	t.Helper()
	rr := do(mux, http.MethodGet, "/api/live/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var v live.View
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestLiveSessionFlow(t *testing.T) {
	mux := setup(t, search.Limits{})
	id := open(t, mux)

	v := view(t, mux, id)
	assert.Zero(t, v.Submitted)
	assert.False(t, v.Pending)
	assert.Nil(t, v.Result)

	rr := do(mux, http.MethodPost, "/api/live/"+id+"/query", `{"name":"ra"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	rr = do(mux, http.MethodPost, "/api/live/"+id+"/query", `{"name":"priya"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)

	var sub live.Submitted
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sub))
	assert.Equal(t, id, sub.ID)
	assert.Equal(t, uint64(2), sub.Seq)

	require.Eventually(t, func() bool {
		var v live.View
		rr := do(mux, http.MethodGet, "/api/live/"+id, "")
		return json.NewDecoder(rr.Body).Decode(&v) == nil && v.Seq == sub.Seq
	}, time.Second, 5*time.Millisecond)

	v = view(t, mux, id)
	assert.False(t, v.Pending)
	require.NotNil(t, v.Result)
	assert.Equal(t, "priya", v.Result.Criteria.Name)
	require.Len(t, v.Result.Groups, 1)
	require.Len(t, v.Result.Groups[0].Cards, 1)
	assert.Equal(t, "Priya Sharma", v.Result.Groups[0].Cards[0].Title)
	assert.NotNil(t, v.UpdatedAt)

	rr = do(mux, http.MethodDelete, "/api/live/"+id, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"closed"}`, rr.Body.String())

	rr = do(mux, http.MethodGet, "/api/live/"+id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSubmitErrors(t *testing.T) {
	mux := setup(t, search.Limits{})
	id := open(t, mux)

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"unknown session", "/api/live/nope/query", `{"name":"raj"}`, http.StatusNotFound},
		{"empty body", "/api/live/" + id + "/query", "", http.StatusBadRequest},
		{"malformed body", "/api/live/" + id + "/query", `{"name":`, http.StatusBadRequest},
		{"term too long", "/api/live/" + id + "/query", `{"name":"` + strings.Repeat("x", 101) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(mux, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Body.String(), `"status":"error"`)
		})
	}
}

func TestCloseUnknown(t *testing.T) {
	mux := setup(t, search.Limits{})

	rr := do(mux, http.MethodDelete, "/api/live/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOpenPastCap(t *testing.T) {
	mux := setup(t, search.Limits{MaxOpen: 1, IdleTTL: time.Hour})
	id := open(t, mux)

	rr := do(mux, http.MethodPost, "/api/live", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "too many open live sessions")

	require.Equal(t, http.StatusOK, do(mux, http.MethodDelete, "/api/live/"+id, "").Code)
	open(t, mux)
}
