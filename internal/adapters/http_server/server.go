package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultRequestTimeout = 15 * time.Second

// Server is the Homezy API router.
type Server struct{ mux *chi.Mux }

type Option func(*options)

type options struct {
	logger  zerolog.Logger
	timeout time.Duration
}

// WithLogger replaces the global zerolog logger used for access logs.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// WithRequestTimeout bounds every request; zero keeps the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func New(opts ...Option) *Server {
	o := options{logger: log.Logger, timeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	m := chi.NewRouter()
	m.Use(chimw.RealIP, chimw.RequestID, chimw.CleanPath)
	m.Use(Observe(o.logger))
	m.Use(chimw.Recoverer)
	m.Use(Timeout(o.timeout))

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported on "+r.URL.Path)
	})

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler such as /metrics.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
