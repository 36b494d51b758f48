package server

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/internal/config"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/jrsteele09/circle-miniapp/wishlist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	sessions  tokens.Repo
	cookies   *sessions.CookieStore
	client    *circleapi.Client
	wishlist  *wishlist.Tracker
	registry  *prometheus.Registry
	metrics   *httpMetrics
	templates map[string]*template.Template
	started   time.Time
}

// New builds the HTTP handler. A nil registry gets a private one so /metrics
// still works in tests.
func New(config config.Config, sessionRepo tokens.Repo, client *circleapi.Client, tracker *wishlist.Tracker, registry *prometheus.Registry) (*Server, error) {
	if !config.IsDev() && !config.HasSessionSecret() {
		return nil, errors.Wrapf(errors.ErrMissingSessionSecret, "[Server New] %s", config.GetEnv())
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if tracker == nil {
		t, err := wishlist.NewTracker(wishlist.DefaultSize)
		if err != nil {
			return nil, errors.Wrapf(err, "[Server New] wishlist tracker")
		}
		tracker = t
	}

	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		sessions: sessionRepo,
		cookies:  newCookieStore(config),
		client:   client,
		wishlist: tracker,
		registry: registry,
		metrics:  newHTTPMetrics(registry),
		started:  time.Now(),
	}

	templates, err := parsePages()
	if err != nil {
		return nil, errors.Wrapf(err, "[Server New] failed to parse templates")
	}
	s.templates = templates

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDev {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Msg(colouredRoute(method, path))
	}
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
