// Package fileserver serves a build output directory over plain HTTP GET.
//
// It exists so locally built wasm artifacts can be loaded by a browser during
// development, and for nothing else: no component of the checker depends on
// it and it depends on none of them. The one piece of real configuration is
// the MIME type registration for the .wasm module extension, which streaming
// compilation in browsers requires and which platform mime tables routinely
// lack.
package fileserver

import (
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8003"

func init() {
	// platform mime.types files routinely miss the wasm mapping
	mime.AddExtensionType(".wasm", "application/wasm")
}

// Server is a static GET-only file server over one directory.
type Server struct {
	dir  string
	addr string
}

// New creates a server over dir, listening on DefaultAddr until overridden.
func New(dir string) *Server {
	return &Server{dir: dir, addr: DefaultAddr}
}

// WithAddr sets the listen address.
func (s *Server) WithAddr(addr string) *Server {
	s.addr = addr
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the routed handler, usable without a listener in tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Method(http.MethodGet, "/*", http.FileServer(http.Dir(s.dir)))
	return r
}

// ListenAndServe blocks serving the directory until the listener fails.
func (s *Server) ListenAndServe() error {
	Logger().Info("serving directory",
		zap.String("dir", s.dir),
		zap.String("addr", s.addr))
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		Logger().Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)))
	})
}
