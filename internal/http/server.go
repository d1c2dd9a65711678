// Package http serves the browser UI: the PIN gate and the monthly
// dashboard, rendered on the server and updated with htmx fragments.
package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"gagyebu/internal/budget"
	"gagyebu/internal/cache"
	"gagyebu/internal/log"
	"gagyebu/internal/middleware/ratelimit"
	"gagyebu/internal/middleware/security"
	"gagyebu/internal/middleware/trace"
	"gagyebu/internal/session"
	"gagyebu/internal/store"
	appweb "gagyebu/web"
)

// Store is what the server needs from a backend.
type Store interface {
	store.PinLookup
	store.SnapshotReader
	store.SnapshotWriter
	Ping(ctx context.Context) error
}

type Options struct {
	Addr               string
	RateLimitPerMinute int
	SessionMax         int
	SessionIdleTTL     time.Duration
	Logger             *log.Logger
	// Now and the delays are passed to every budget controller.
	Now             func() time.Time
	SavedResetDelay time.Duration
	ErrorClearDelay time.Duration
}

type Server struct {
	http.Server
	templates *template.Template
	store     Store
	gate      *session.Gate
	sessions  *sessionRegistry
	logger    *log.Logger

	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware

	started      time.Time
	saves        atomic.Int64
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(opts Options, st Store) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.SessionMax <= 0 {
		opts.SessionMax = 256
	}
	if opts.SessionIdleTTL <= 0 {
		opts.SessionIdleTTL = 12 * time.Hour
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	templates, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	sessions := newSessionRegistry(opts.SessionMax, opts.SessionIdleTTL, st, st, budget.Options{
		Logger:          opts.Logger.WithComponent(log.ComponentBudget).Logger,
		Now:             opts.Now,
		SavedResetDelay: opts.SavedResetDelay,
		ErrorClearDelay: opts.ErrorClearDelay,
	})
	cacheManager := cache.NewManager(opts.Logger.WithComponent(log.ComponentSession).Logger)
	cacheManager.Register(sessions.clients)
	cacheManager.StartCleanup(time.Minute)

	s := &Server{
		templates:    templates,
		store:        st,
		gate:         session.NewGate(st, opts.Logger.WithComponent(log.ComponentAuth).Logger),
		sessions:     sessions,
		logger:       logger,
		cacheManager: cacheManager,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     security.NewDetector(),
		tracer:       trace.NewMiddleware(),
		started:      time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = log.Middleware(logger, trace.FromRequest)(handler)
	handler = s.tracer.Middleware(handler)
	handler = s.detect(handler)
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, nil)(handler)
	handler = security.NoStore(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	withSession := s.sessions.withSession
	mux.HandleFunc("GET /{$}", withSession(s.handleIndex))
	mux.HandleFunc("POST /pin", withSession(s.handlePin))
	mux.HandleFunc("GET /dashboard", withSession(requireAuth(s.handleDashboard)))
	mux.HandleFunc("POST /month/prev", withSession(requireAuth(s.handleMonth(-1))))
	mux.HandleFunc("POST /month/next", withSession(requireAuth(s.handleMonth(1))))
	mux.HandleFunc("POST /entries", withSession(requireAuth(s.handleEntries)))
	mux.HandleFunc("POST /entries/{id}/toggle", withSession(requireAuth(s.handleToggle)))
	mux.HandleFunc("POST /save", withSession(requireAuth(s.handleSave)))
	mux.HandleFunc("POST /history/open", withSession(requireAuth(s.handleHistoryOpen)))
	mux.HandleFunc("POST /history/close", withSession(requireAuth(s.handleHistoryClose)))
	mux.HandleFunc("GET /summary", withSession(requireAuthText(s.handleSummary)))
	mux.HandleFunc("GET /history/{id}/memo", withSession(requireAuthText(s.handleMemo)))
}

// detect logs probing requests. They are still served (and 404).
func (s *Server) detect(next http.Handler) http.Handler {
	logger := s.logger.WithComponent(log.ComponentSecurity)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			logger.WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// render executes a template into memory so a failure never leaves a
// half-written page.
func (s *Server) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Shutdown stops background sweeps and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
