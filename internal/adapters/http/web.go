package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"cutrackit/internal/adapters/auth"
	"cutrackit/internal/adapters/email"
	"cutrackit/internal/adapters/http/middleware"
	"cutrackit/internal/adapters/http/perf"
	accountStore "cutrackit/internal/adapters/storage/account"
	courtStore "cutrackit/internal/adapters/storage/court"
	matchStore "cutrackit/internal/adapters/storage/match"
	profileStore "cutrackit/internal/adapters/storage/profile"
	sessionStore "cutrackit/internal/adapters/storage/session"
	teamStore "cutrackit/internal/adapters/storage/team"
	"cutrackit/internal/application/orchestrators"
	"cutrackit/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	ProfileStore profileStore.Store
	CourtStore   courtStore.Store
	SessionStore sessionStore.Store
	TeamStore    teamStore.Store
	MatchStore   matchStore.Store
}

// Config holds the HTTP-facing settings.
type Config struct {
	Secure             bool // production: Secure cookies, CSRF over TLS
	CSRFKey            []byte
	TrustedOrigins     []string
	CookieTTL          time.Duration
	RateLimitPerSecond int
	SlowRequestMs      int
	Location           *time.Location // displayed times and form input; nil means UTC
	SessionTimeout     time.Duration  // stale court sessions; zero uses the default
}

// Deps holds the collaborators a Server needs besides stores.
type Deps struct {
	Tokens  *auth.TokenIssuer
	Metrics *metrics.Manager // optional
	Perf    *perf.Collector  // optional
	Sender  email.Sender     // optional
	Now     func() time.Time // optional
}

// Server serves the HTML pages and the JSON API.
type Server struct {
	cfg      Config
	stores   Stores
	sessions *middleware.SessionStore
	tokens   *auth.TokenIssuer
	metrics  *metrics.Manager
	perf     *perf.Collector
	sender   email.Sender
	limiter  *middleware.RateLimiter
	pages    map[string]*template.Template
	now      func() time.Time
	started  time.Time
}

var pageNames = []string{
	"login.html", "signup.html", "dashboard.html", "account.html",
	"teams.html", "roster.html", "leaderboard.html", "traffic.html",
	"courts.html", "court.html", "matches.html", "error.html",
}

// NewServer parses the templates and builds a Server.
func NewServer(cfg Config, stores Stores, deps Deps) (*Server, error) {
	if len(cfg.CSRFKey) != 32 {
		return nil, errors.New("csrf key must be 32 bytes")
	}
	if deps.Tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 10
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = orchestrators.DefaultSessionTimeout
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(templateFuncs(cfg.Location)).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tpl
	}

	return &Server{
		cfg:      cfg,
		stores:   stores,
		sessions: middleware.NewSessionStore(cfg.CookieTTL),
		tokens:   deps.Tokens,
		metrics:  deps.Metrics,
		perf:     deps.Perf,
		sender:   deps.Sender,
		limiter:  middleware.NewRateLimiter(cfg.RateLimitPerSecond, time.Second),
		pages:    pages,
		now:      now,
		started:  now(),
	}, nil
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"add":     func(a, b int) int { return a + b },
		"safe":    func(s string) template.HTML { return template.HTML(s) },
		"fmtTime": func(t time.Time) string { return t.In(loc).Format("Mon 2 Jan 15:04") },
		"initial": func(s string) string {
			for _, r := range s {
				return strings.ToUpper(string(r))
			}
			return "?"
		},
	}
}

// Handler builds the mux and the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	paths := s.registerRoutes(mux)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(s.cfg.CSRFKey, s.cfg.Secure, s.cfg.TrustedOrigins),
		middleware.Auth(s.sessions, s.tokens),
		middleware.RateLimit(s.limiter),
		middleware.Timing(s.perf,
			middleware.WithSlowRequestMs(s.cfg.SlowRequestMs),
			middleware.WithHTTPRecorder(s.metrics),
			middleware.WithKnownPaths(paths),
		),
	)
}
