package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pktracker/internal/backend"
	applog "pktracker/internal/log"
	mwauth "pktracker/internal/middleware/auth"
	"pktracker/internal/middleware/ratelimit"
	"pktracker/internal/middleware/security"
	"pktracker/internal/middleware/trace"
	appweb "pktracker/web"
)

const (
	loginPath       = "/login/"
	expensesPath    = "/expenses/"
	groupsPath      = "/groups/"
	requestTimeout  = 30 * time.Second
	staticMaxAgeSec = 3600
)

// Options configures NewServer.
type Options struct {
	Addr    string
	Backend *backend.Backend
	Logger  *applog.Logger

	// Registry collects the HTTP, security and runtime metrics served on
	// /metrics. A fresh registry is created when nil.
	Registry *prometheus.Registry

	RateLimitPerMinute int
	SecureCookies      bool
	TrustedProxies     []string
}

type Server struct {
	http.Server
	backend   *backend.Backend
	templates *templateSet
	logger    *applog.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	registry  *prometheus.Registry

	secureCookies bool
	started       time.Time
	now           func() time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and configures every route,
// returning a ready-to-run http.Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Backend == nil {
		return nil, errors.New("backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	templates, err := loadTemplates(appweb.TemplatesFS)
	if err != nil {
		return nil, err
	}

	detector := security.NewDetector(reg)
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		backend:   opts.Backend,
		templates: templates,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Registerer:        reg,
		}),
		detector:      detector,
		registry:      reg,
		secureCookies: opts.SecureCookies,
		started:       time.Now(),
		now:           time.Now,
	}
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(trace.NewMetrics(reg)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s, nil
}

func (s *Server) routes(metrics *trace.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(trace.NewMiddleware(s.detector.ClientIP, s.logger, metrics).Middleware)
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.limiter.Middleware(s.detector.ClientIP))
	r.Use(http.NewCrossOriginProtection().Handler)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(mwauth.Session(s.backend.Sessions))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(staticMaxAgeSec)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Get("/signup/", s.handleSignupForm)
	r.Post("/signup/", s.handleSignup)
	r.Get("/login/", s.handleLoginForm)
	r.Post("/login/", s.handleLogin)
	r.Post("/logout/", s.handleLogout)
	r.Get("/", s.handleHome)
	r.Get("/blogs/{category}/", s.handleBlogList)

	r.Group(func(r chi.Router) {
		r.Use(mwauth.RequireAuth(loginPath))
		r.Use(security.NoStore)

		r.Get("/expenses/", s.handleExpenseList)
		r.Post("/expenses/", s.handleExpenseListPost)
		r.Get("/set-budget/", s.handleBudgetForm)
		r.Post("/set-budget/", s.handleSetBudget)
		r.Get("/edit/{id}/", s.handleEditExpenseForm)
		r.Post("/edit/{id}/", s.handleEditExpense)
		r.Get("/delete/{id}/", s.handleDeleteConfirm)
		r.Post("/delete/{id}/", s.handleDeleteExpense)
		r.Post("/delete-income/{id}/", s.handleDeleteIncome)

		r.Get("/charts/", s.handleCharts)
		r.Get("/charts/categories.png", s.handleCategoryChart)
		r.Get("/history/", s.handleHistory)
		r.Get("/calendar/", s.handleCalendar)
		r.Get("/calendar/events", s.handleCalendarEvents)
		r.Get("/forecast/", s.handleForecast)
		r.Get("/forecast/categories.png", s.handleForecastChart)
		r.Get("/download/", s.handleDownload)
		r.Get("/export-csv/", s.handleExportCSV)

		r.Get("/groups/", s.handleGroupList)
		r.Get("/groups/create/", s.handleCreateGroupForm)
		r.Post("/groups/create/", s.handleCreateGroup)
		r.Get("/groups/{id}/", s.handleGroupDetail)
		r.Post("/groups/{id}/", s.handleGroupDetailPost)
	})

	r.NotFound(s.handleNotFound)
	return r
}

// Shutdown stops the rate limiter cleanup and then the HTTP server. It is
// safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
