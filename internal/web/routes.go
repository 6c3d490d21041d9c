package web

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-verifier/internal/web/handlers"
	"github.com/kozaktomas/face-verifier/internal/web/middleware"
	"github.com/kozaktomas/face-verifier/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	candidatesHandler := handlers.NewCandidatesHandler(s.service, s.logger)
	compareHandler := handlers.NewCompareHandler(s.service, s.logger)
	statsHandler := handlers.NewStatsHandler(s.store, s.config.Oracle.Backend, s.service.Matcher(), s.logger)

	s.router.Get("/health", handlers.HealthCheck)

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", candidatesHandler.Register)
		r.Post("/verify", candidatesHandler.Verify)
		r.Post("/compare", compareHandler.Compare)
		r.Get("/stats", statsHandler.Get)
	})

	// Serve the embedded UI
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders())
		r.Get("/*", s.serveUI)
	})
}

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".ico":  "image/x-icon",
}

// serveUI serves the single-page UI, falling back to index.html for unknown paths.
func (s *Server) serveUI(w http.ResponseWriter, r *http.Request) {
	fsys := static.GetFileSystem()
	name := r.URL.Path
	if name == "/" {
		name = "/index.html"
	}

	f, err := fsys.Open(name)
	if err != nil {
		if strings.HasPrefix(name, "/assets/") {
			http.NotFound(w, r)
			return
		}
		name = "/index.html"
		if f, err = fsys.Open(name); err != nil {
			http.NotFound(w, r)
			return
		}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	contentType, ok := contentTypes[path.Ext(name)]
	if !ok {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
