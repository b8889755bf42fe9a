package livereload

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/toudaivocadou/vocadou/internal/logging"
)

// Endpoint is the path the preview script connects to.
const Endpoint = "/_livereload"

// Script reloads the page after a successful build and logs build errors
// to the console.
const Script = `<script>(function(){` +
	`var p=location.protocol==="https:"?"wss://":"ws://";` +
	`function c(){var s=new WebSocket(p+location.host+"` + Endpoint + `");` +
	`s.onmessage=function(e){var m=JSON.parse(e.data);` +
	`if(m.type==="reload"){location.reload();}else if(m.type==="build_error"){console.error("build "+m.build_id+": "+m.error);}};` +
	`s.onclose=function(){setTimeout(c,1000);};}c();})();</script>`

// Server serves the built site for local preview and injects Script into
// every HTML page it returns. Built files on disk are never modified.
type Server struct {
	http   *http.Server
	root   afero.Fs
	hub    *Hub
	logger logging.Logger
}

// NewServer creates a preview server for the site in root.
func NewServer(addr string, root afero.Fs, hub *Hub, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{root: root, hub: hub, logger: logger.WithComponent("preview")}

	mux := http.NewServeMux()
	mux.Handle(Endpoint, hub)
	mux.Handle("/", Chain(http.HandlerFunc(s.serveFile), LogRequests(s.logger), SecurityHeaders))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's routes, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Preview server listening", "url", "http://"+ln.Addr().String()+"/")
		errc <- s.http.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.hub.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(shutdownCtx, err, "Live reload did not shut down cleanly")
	}
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	name, data, err := s.lookup(strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/"))
	status := http.StatusOK
	if err != nil {
		name, status = "404.html", http.StatusNotFound
		if data, err = afero.ReadFile(s.root, name); err != nil {
			http.NotFound(w, r)
			return
		}
	}

	if path.Ext(name) == ".html" {
		data = Inject(data)
	}

	w.Header().Set("Content-Type", contentType(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}

// lookup finds the file for a cleaned request path: directories serve
// their index.html and extensionless paths fall back to name.html.
func (s *Server) lookup(name string) (string, []byte, error) {
	candidates := []string{name, name + ".html"}
	if name == "" {
		candidates = []string{"index.html"}
	} else if isDir, _ := afero.IsDir(s.root, name); isDir {
		candidates = []string{path.Join(name, "index.html"), name + ".html"}
	}

	var err error
	for _, c := range candidates {
		var data []byte
		if data, err = afero.ReadFile(s.root, c); err == nil {
			return c, data, nil
		}
	}
	return "", nil, err
}

// Inject adds Script before the closing body tag, or at the end when the
// page has none.
func Inject(page []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if idx < 0 {
		return append(page[:len(page):len(page)], Script...)
	}
	out := make([]byte, 0, len(page)+len(Script))
	out = append(out, page[:idx]...)
	out = append(out, Script...)
	return append(out, page[idx:]...)
}

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".xml":  "application/xml",
	".txt":  "text/plain; charset=utf-8",
	".svg":  "image/svg+xml",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".avif": "image/avif",
	".ico":  "image/x-icon",
}

func contentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
