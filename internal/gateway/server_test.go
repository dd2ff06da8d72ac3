package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/soyeahso/roster/internal/config"
	"github.com/soyeahso/roster/internal/hooks"
	"github.com/soyeahso/roster/internal/logging"
	"github.com/soyeahso/roster/internal/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend answers every request with the same status and body.
func stubBackend(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func testServer(t *testing.T, backendURL string, opts ...ServerOption) *httptest.Server {
	t.Helper()
	log := logging.New(nil, "silent")
	fwd := proxy.NewForwarder(proxy.Options{BaseURL: backendURL}, log)
	srv := New(config.Defaults().Proxy, fwd, log, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func send(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t, "http://127.0.0.1:1")
	resp, body := send(t, "GET", ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestNotFoundEndpoint(t *testing.T) {
	ts := testServer(t, "http://127.0.0.1:1")
	resp, body := send(t, "GET", ts.URL+"/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "/nonexistent", body["path"])
}

func TestMethodNotAllowed(t *testing.T) {
	ts := testServer(t, "http://127.0.0.1:1")

	tests := []struct {
		method string
		path   string
		allow  string
	}{
		{"DELETE", "/api/agents", "GET, POST"},
		{"PUT", "/api/agents", "GET, POST"},
		{"PATCH", "/api/agents", "GET, POST"},
		{"GET", "/api/agents/1", "PUT, DELETE"},
		{"POST", "/api/agents/1", "PUT, DELETE"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, body := send(t, tt.method, ts.URL+tt.path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Equal(t, tt.allow, resp.Header.Get("Allow"))
			assert.Equal(t, "Method Not Allowed", body["error"])
			assert.Len(t, body["allow"], len(strings.Split(tt.allow, ", ")))
		})
	}
}

func TestHeadOnCollection(t *testing.T) {
	ts := testServer(t, "http://127.0.0.1:1")

	for _, path := range []string{"/api/agents", "/api/agents/1"} {
		resp, _ := send(t, "HEAD", ts.URL+path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
		assert.NotEmpty(t, resp.Header.Get("Allow"), path)
	}
	resp, _ := send(t, "HEAD", ts.URL+"/api/agents", "")
	assert.Equal(t, "GET, POST", resp.Header.Get("Allow"))
}

func TestBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ts := testServer(t, url)
	resp, body := send(t, "GET", ts.URL+"/api/agents", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Internal Server Error"}, body)
}

func TestBackendErrorPassthrough(t *testing.T) {
	backend := stubBackend(t, http.StatusNotFound, `{"detail":"Agent not found","code":"not_found"}`)
	ts := testServer(t, backend)

	resp, body := send(t, "PUT", ts.URL+"/api/agents/9", `{"salary":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]any{"detail": "Agent not found", "code": "not_found"}, body)
}

func TestDeleteGuardTextFallback(t *testing.T) {
	backend := stubBackend(t, http.StatusBadRequest, `{"detail":"Cannot delete cat assigned to a mission"}`)
	ts := testServer(t, backend)

	resp, body := send(t, "DELETE", ts.URL+"/api/agents/1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": proxy.AssignmentConflictMessage}, body)
}

func TestCreateRepliesCreated(t *testing.T) {
	backend := stubBackend(t, http.StatusOK, `{"id":1,"name":"Tom","years_of_experience":3,"breed":"Sphynx","salary":1000}`)
	ts := testServer(t, backend)

	resp, body := send(t, "POST", ts.URL+"/api/agents", `{"name":"Tom"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), body["id"])
}

func TestSuccessBodiesPassThrough(t *testing.T) {
	agent := `{"id":1,"name":"Tom","years_of_experience":3,"breed":"Sphynx","salary":1000,"codename":"whiskers"}`

	ts := testServer(t, stubBackend(t, http.StatusCreated, agent))
	resp, body := send(t, "POST", ts.URL+"/api/agents", `{"name":"Tom"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "whiskers", body["codename"])

	resp, body = send(t, "PUT", ts.URL+"/api/agents/1", `{"salary":1000}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "whiskers", body["codename"])

	ts = testServer(t, stubBackend(t, http.StatusOK, "["+agent+"]"))
	resp, err := http.Get(ts.URL + "/api/agents")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "["+agent+"]", string(raw))
}

func TestMutationHooks(t *testing.T) {
	backend := stubBackend(t, http.StatusOK, `{"id":4,"name":"Tom","years_of_experience":3,"breed":"Sphynx","salary":7,"message":"ok"}`)

	hm := hooks.NewManager(logging.New(nil, "silent"))
	var mu sync.Mutex
	var events []string
	hm.OnAll("recorder", func(_ context.Context, p hooks.Payload) error {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, p.Event)
		return nil
	})
	ts := testServer(t, backend, WithHooks(hm))

	send(t, "POST", ts.URL+"/api/agents", `{}`)
	send(t, "PUT", ts.URL+"/api/agents/4", `{"salary":7}`)
	send(t, "DELETE", ts.URL+"/api/agents/4", "")
	hm.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{hooks.EventAgentCreated, hooks.EventSalaryUpdated, hooks.EventAgentDeleted}, events)
}

func TestFailedMutationEmitsNothing(t *testing.T) {
	backend := stubBackend(t, http.StatusBadRequest, `{"detail":"x","code":"agent_assigned"}`)

	hm := hooks.NewManager(logging.New(nil, "silent"))
	var called bool
	hm.On(hooks.EventAgentDeleted, "recorder", func(_ context.Context, _ hooks.Payload) error {
		called = true
		return nil
	})
	ts := testServer(t, backend, WithHooks(hm))

	send(t, "DELETE", ts.URL+"/api/agents/4", "")
	hm.Wait()
	assert.False(t, called)
}

func TestServerStart(t *testing.T) {
	cfg := config.Defaults().Proxy
	cfg.Port = 0 // let OS pick a port

	log := logging.New(nil, "silent")
	hm := hooks.NewManager(log)
	var mu sync.Mutex
	var events []string
	hm.OnAll("recorder", func(_ context.Context, p hooks.Payload) error {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, p.Event)
		return nil
	})

	srv := New(cfg, proxy.NewForwarder(proxy.Options{BaseURL: "http://127.0.0.1:1"}, log), log, WithHooks(hm))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, <-errCh)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{hooks.EventProxyStart, hooks.EventProxyStop}, events)
}
