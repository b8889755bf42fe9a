package livereload

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInject(t *testing.T) {
	out := string(Inject([]byte("<html><body><p>x</p></BODY></html>")))
	assert.True(t, strings.HasPrefix(out, "<html><body><p>x</p><script>"))
	assert.True(t, strings.HasSuffix(out, "</script></BODY></html>"))

	page := []byte("<p>fragment</p>")
	out = string(Inject(page))
	assert.Equal(t, "<p>fragment</p>"+Script, out)
	assert.Equal(t, "<p>fragment</p>", string(page))
}

func newSite(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range map[string]string{
		"index.html":         "<html><body>home</body></html>",
		"members.html":       "<html><body>members</body></html>",
		"404.html":           "<html><body>missing</body></html>",
		"hash/00ff.css":      "body{}",
		"works_list.json":    "[]",
		"works/index.html":   "<html><body>works dir</body></html>",
		"members/alice.html": "<html><body>alice</body></html>",
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte(data), 0o644))
	}
	return fs
}

func TestServeFile(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Shutdown(context.Background())
	srv := httptest.NewServer(NewServer("", newSite(t), hub, nil).Handler())
	defer srv.Close()

	testCases := []struct {
		path        string
		status      int
		contentType string
		body        string
		injected    bool
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8", "home", true},
		{"/members.html", http.StatusOK, "text/html; charset=utf-8", "members", true},
		{"/members", http.StatusOK, "text/html; charset=utf-8", "members", true},
		{"/members/alice.html", http.StatusOK, "text/html; charset=utf-8", "alice", true},
		{"/works/", http.StatusOK, "text/html; charset=utf-8", "works dir", true},
		{"/hash/00ff.css", http.StatusOK, "text/css; charset=utf-8", "body{}", false},
		{"/works_list.json", http.StatusOK, "application/json", "[]", false},
		{"/nope.html", http.StatusNotFound, "text/html; charset=utf-8", "missing", true},
		{"/../../etc/passwd", http.StatusNotFound, "text/html; charset=utf-8", "missing", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tc.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.contentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, string(body), tc.body)
			assert.Equal(t, tc.injected, strings.Contains(string(body), Endpoint))
		})
	}

	resp, err := http.Post(srv.URL+"/", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	http.DefaultClient.CloseIdleConnections()
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(Message{Type: TypeReload, BuildID: 3})

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeReload, msg.Type)
	assert.Equal(t, 3, msg.BuildID)
	assert.False(t, msg.Timestamp.IsZero())

	require.NoError(t, hub.Shutdown(ctx))
	assert.Equal(t, 0, hub.Clients())

	_, _, err = conn.Read(ctx)
	assert.Error(t, err)
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsAfterShutdown(t *testing.T) {
	hub := NewHub(nil, nil)
	require.NoError(t, hub.Shutdown(context.Background()))

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Endpoint, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(ln.Addr().String(), newSite(t), NewHub(nil, nil), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	http.DefaultClient.CloseIdleConnections()
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestServeFileHeaders(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	NewServer("", newSite(t), hub, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
