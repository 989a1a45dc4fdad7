package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/abacus/internal/config"
	"github.com/ternarybob/abacus/pkg/session"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *session.MemoryStore) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Service.DataDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	store := session.NewMemoryStore(session.Options{
		MaxSessions: cfg.Calculator.MaxSessions,
		ErrorText:   cfg.Calculator.ErrorText,
	})
	return NewServer(cfg, store, arbor.NewLogger()), store
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, h http.Handler) SessionResponse {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	SetVersion("1.2.3")
	defer SetVersion("dev")
	rec = do(t, srv.Handler(), http.MethodGet, "/version", nil)
	assert.JSONEq(t, `{"version":"1.2.3","service":"abacus-service"}`, rec.Body.String())
}

func TestCreateAndGetSession(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	created := createSession(t, h)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "0", created.Display)
	require.NotNil(t, created.State)

	rec := do(t, h, http.MethodGet, "/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
}

func TestPressKeys(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	sess := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/sessions/"+sess.ID+"/keys",
		PressRequest{Keys: []string{"3", "+", "4", "×", "2", "Enter", "Alt"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "14", resp.Display)
	assert.Equal(t, 6, resp.Accepted)
	assert.Equal(t, []string{"Alt"}, resp.Ignored)

	rec = do(t, h, http.MethodPost, "/sessions/"+sess.ID+"/keys", PressRequest{Input: "* 2 ="})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "28", resp.Display)
}

func TestPressKeys_DivisionByZero(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) { cfg.Calculator.ErrorText = "E" })
	h := srv.Handler()
	sess := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/sessions/"+sess.ID+"/keys", PressRequest{Input: "8/0="})
	var resp PressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "E", resp.Display)
}

func TestPressKeys_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	sess := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/sessions/"+sess.ID+"/keys", PressRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.ID+"/keys", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rec = do(t, h, http.MethodPost, "/sessions/missing/keys", PressRequest{Input: "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndDeleteSessions(t *testing.T) {
	srv, store := newTestServer(t, nil)
	h := srv.Handler()
	a := createSession(t, h)
	createSession(t, h)

	rec := do(t, h, http.MethodGet, "/sessions", nil)
	var list []SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = do(t, h, http.MethodDelete, "/sessions/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, store.Len())

	rec = do(t, h, http.MethodDelete, "/sessions/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) { cfg.Calculator.MaxSessions = 1 })
	h := srv.Handler()
	createSession(t, h)

	rec := do(t, h, http.MethodPost, "/sessions", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) { cfg.API.APIKey = "k" })
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	req.Header.Set("X-API-Key", "k")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestWebPage(t *testing.T) {
	srv, store := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	id := loc.Query().Get("session")
	require.NotEmpty(t, id)

	for _, key := range []string{"7", "×", "6", "="} {
		form := url.Values{"session": {id}, "key": {key}}
		req := httptest.NewRequest(http.MethodPost, "/web/press", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusSeeOther, rr.Code)
	}

	sess, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "42", sess.Display())

	rec = do(t, h, http.MethodGet, "/?session="+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="42"`)
}
