package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"financetracker/internal/auth"
	"financetracker/internal/log"
	"financetracker/internal/middleware/ratelimit"
	"financetracker/internal/middleware/security"
	"financetracker/internal/middleware/trace"
	"financetracker/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Accounts     *services.AccountService
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Summary      *services.SummaryService
	Sessions     *auth.Sessions
	DB           Pinger
	Logger       *log.Logger
}

// Options tune the listener and the outer middleware.
type Options struct {
	Addr        string
	CORSOrigins []string
	// AuthRateLimit is requests per minute per client IP on register and
	// login. Zero uses the limiter default.
	AuthRateLimit  int
	TrustedProxies []string
}

type Server struct {
	http.Server

	accounts     *services.AccountService
	transactions *services.TransactionService
	budgets      *services.BudgetService
	summary      *services.SummaryService
	sessions     *auth.Sessions
	db           Pinger
	logger       *log.Logger

	detector    *security.Detector
	authLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

func NewServer(opts Options, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP})
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.AuthRateLimit > 0 {
		limiterCfg.RequestsPerMinute = opts.AuthRateLimit
	}

	s := &Server{
		accounts:     deps.Accounts,
		transactions: deps.Transactions,
		budgets:      deps.Budgets,
		summary:      deps.Summary,
		sessions:     deps.Sessions,
		db:           deps.DB,
		logger:       logger,
		detector:     detector,
		authLimiter:  ratelimit.NewLimiter(limiterCfg),
		tracer:       trace.NewMiddleware(logger, detector.ExtractClientIP),
		started:      time.Now(),
	}
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.authLimiter.Middleware(s.detector.ExtractClientIP, s.rateLimited))
			r.Post("/auth/register", s.handleRegister)
			r.Post("/auth/login", s.handleLogin)
		})
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/categories", s.handleCategories)

		r.Group(func(r chi.Router) {
			r.Use(s.sessions.Require(unauthorized))

			r.Get("/auth/me", s.handleMe)

			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)

			r.Get("/budgets", s.handleListBudgets)
			r.Post("/budgets", s.handleCreateBudget)
			r.Put("/budgets/{id}", s.handleUpdateBudget)
			r.Delete("/budgets/{id}", s.handleDeleteBudget)

			r.Get("/summary", s.handleSummary)
		})
	})

	return r
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "Too many requests")
}

// Shutdown stops background goroutines and drains the listener. Safe to
// call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.authLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// userID returns the authenticated caller; only valid behind Require.
func userID(r *http.Request) string {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}
