package adminapi_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-net/classicd/internal/adminapi"
)

type fakeGateway struct {
	players     []adminapi.PlayerSummary
	worlds      []adminapi.WorldSummaryView
	kicked      map[string]string
	banned      map[string]bool
	ops         map[string]bool
	saveErr     error
	saveCalled  bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		kicked: map[string]string{},
		banned: map[string]bool{},
		ops:    map[string]bool{},
	}
}

func (f *fakeGateway) PlayerSnapshot() []adminapi.PlayerSummary   { return f.players }
func (f *fakeGateway) WorldSummaries() []adminapi.WorldSummaryView { return f.worlds }

func (f *fakeGateway) KickPlayer(username, reason string) bool {
	for _, p := range f.players {
		if p.Username == username {
			f.kicked[username] = reason
			return true
		}
	}
	return false
}

func (f *fakeGateway) BanPlayer(username string) error   { f.banned[username] = true; return nil }
func (f *fakeGateway) UnbanPlayer(username string) error { delete(f.banned, username); return nil }
func (f *fakeGateway) OpPlayer(username string) error    { f.ops[username] = true; return nil }
func (f *fakeGateway) DeopPlayer(username string) error  { delete(f.ops, username); return nil }

func (f *fakeGateway) SaveAll() error {
	f.saveCalled = true
	return f.saveErr
}

const testSecret = "test-secret"

func newTestServer(t *testing.T, gw *fakeGateway) *httptest.Server {
	t.Helper()
	api := adminapi.New(gw, nil, []byte(testSecret))
	return httptest.NewServer(api.Router())
}

func authedRequest(t *testing.T, method, url string) *http.Request {
	t.Helper()
	token, err := adminapi.IssueToken([]byte(testSecret), "test-admin", time.Hour)
	require.NoError(t, err)
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealthzRequiresNoAuth(t *testing.T) {
	srv := newTestServer(t, newFakeGateway())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSecuredRouteRejectsMissingToken(t *testing.T) {
	srv := newTestServer(t, newFakeGateway())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/players")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSecuredRouteAcceptsValidToken(t *testing.T) {
	gw := newFakeGateway()
	gw.players = []adminapi.PlayerSummary{{Username: "notch", World: "main"}}
	srv := newTestServer(t, gw)
	defer srv.Close()

	req := authedRequest(t, http.MethodGet, srv.URL+"/api/v1/players")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []adminapi.PlayerSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "notch", got[0].Username)
}

func TestKickUnknownPlayerReturnsNotFound(t *testing.T) {
	srv := newTestServer(t, newFakeGateway())
	defer srv.Close()

	req := authedRequest(t, http.MethodPost, srv.URL+"/api/v1/players/ghost/kick")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestKickConnectedPlayerSucceeds(t *testing.T) {
	gw := newFakeGateway()
	gw.players = []adminapi.PlayerSummary{{Username: "notch"}}
	srv := newTestServer(t, gw)
	defer srv.Close()

	req := authedRequest(t, http.MethodPost, srv.URL+"/api/v1/players/notch/kick?reason=testing")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "testing", gw.kicked["notch"])
}

func TestSaveAllPropagatesError(t *testing.T) {
	gw := newFakeGateway()
	gw.saveErr = errors.New("disk full")
	srv := newTestServer(t, gw)
	defer srv.Close()

	req := authedRequest(t, http.MethodPost, srv.URL+"/api/v1/worlds/save")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.True(t, gw.saveCalled)
}
