package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pokedex-api/internal/model"
	sqliteRepo "github.com/sakif/pokedex-api/internal/repository/sqlite"
)

func testConfig() Config {
	return Config{
		Port:        0,
		DBPath:      sqliteRepo.MemoryPath,
		JWTSecret:   "server-test-secret-0123456789",
		TokenTTL:    time.Hour,
		BcryptCost:  4,
		SeedOnStart: true,
	}
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts
}

func call(t *testing.T, method, url, body, token string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestServer_EndToEnd(t *testing.T) {
	ts := newTestServer(t, testConfig())
	api := ts.URL + "/api/v1"

	resp, _ := call(t, http.MethodGet, ts.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// register, then log in
	resp, _ = call(t, http.MethodPost, api+"/users", `{"email":"ash@example.com","password":"pikachu"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := call(t, http.MethodPost, api+"/session/email", `{"email":"ash@example.com","password":"pikachu"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		AccessToken string     `json:"accessToken"`
		User        model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	token := login.AccessToken

	resp, body = call(t, http.MethodGet, api+"/users/me", "", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"ash@example.com"`)

	// seeded catalog is browsable anonymously
	resp, body = call(t, http.MethodGet, api+"/pokemon?search=char&limit=2", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page model.Page
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 3, page.Count, "Charmander, Charmeleon, Charizard")
	assert.Len(t, page.Items, 2)

	resp, body = call(t, http.MethodGet, api+"/pokemon/details/Bulbasaur", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bulbasaur model.Pokemon
	require.NoError(t, json.Unmarshal(body, &bulbasaur))
	assert.Equal(t, 951, bulbasaur.MaxCP)

	// favorite, then filter on it
	resp, _ = call(t, http.MethodPost, api+"/pokemon/25/favorite", "", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, http.MethodGet, api+"/pokemon?isFavorite=true", "", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Pikachu", page.Items[0].Name)

	resp, _ = call(t, http.MethodGet, api+"/pokemon?isFavorite=true", "", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, http.MethodDelete, api+"/pokemon/25/favorite", "", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// metrics saw the traffic under route patterns
	resp, body = call(t, http.MethodGet, ts.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	metrics := string(body)
	assert.Contains(t, metrics, `pokedex_http_requests_total{method="POST",route="/api/v1/pokemon/{id}/favorite",status="200"} 1`)
	assert.Contains(t, metrics, "go_goroutines")
}

func TestServer_UnknownRouteIs404(t *testing.T) {
	ts := newTestServer(t, testConfig())

	resp, _ := call(t, http.MethodGet, ts.URL+"/api/v1/nothing-here", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNew_RejectsWeakSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "short"

	_, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestNew_CreatesDatabaseDirectory(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "dir", "pokedex.db")
	cfg.SeedOnStart = false

	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}
