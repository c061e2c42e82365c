// Package ui is the server-rendered web client: it renders the app's
// screens from templates and talks to the finance backend through the
// API client. No domain data lives here beyond short-lived caches.
package ui

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneymate/internal/activity"
	"moneymate/internal/api"
	"moneymate/internal/cache"
	"moneymate/internal/core"
	"moneymate/internal/log"
	"moneymate/internal/report"
	appweb "moneymate/web"
)

// Backend is the slice of the API client the screens use.
type Backend interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, in core.TransactionInput) (api.CreateResult, error)
	DeleteTransaction(ctx context.Context, id string) (api.DeleteResult, error)
	GetBalance(ctx context.Context) (core.Balance, error)
	GetCategories(ctx context.Context) (core.CategorySet, error)
	GetMonthlyReport(ctx context.Context, month string) (core.MonthlyReport, error)
	Login(ctx context.Context, username, password string) (core.User, error)
	Register(ctx context.Context, in core.RegisterInput) (core.User, error)
}

// Sessions is the slice of the session store the screens use.
type Sessions interface {
	Current() *core.User
	Save(user core.User) error
	Clear() error
}

type Server struct {
	http.Server
	templates *template.Template
	backend   Backend
	sessions  Sessions
	recorder  *activity.Recorder
	exporter  *report.Exporter
	logger    *log.Logger

	reportCache *report.Cache
	rateLimiter *rateLimiter
	janitor     *cache.Janitor

	catMu      sync.Mutex
	categories core.CategorySet
	catFetched time.Time

	shutdownOnce sync.Once
}

const (
	categoryTTL        = 10 * time.Minute
	cacheSweepInterval = time.Minute
)

// NewServer configures routes and templates, returning a ready-to-run
// server.
func NewServer(addr string, backend Backend, sessions Sessions, recorder *activity.Recorder, exporter *report.Exporter, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		backend:     backend,
		sessions:    sessions,
		recorder:    recorder,
		exporter:    exporter,
		logger:      logger.WithComponent(log.ComponentUI),
		reportCache: report.NewCache(),
		rateLimiter: newRateLimiter(),
		janitor:     cache.NewJanitor(),
	}
	s.janitor.Register(s.reportCache)
	s.janitor.Start(cacheSweepInterval)

	t, err := template.New("").Funcs(template.FuncMap{
		"rupiah": formatRupiah,
		"signed": signedAmount,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /{$}", s.secure(s.handleIndex))
	mux.HandleFunc("GET /login", s.secure(s.handleLoginPage))
	mux.HandleFunc("POST /login", s.secure(s.handleLogin))
	mux.HandleFunc("GET /register", s.secure(s.handleRegisterPage))
	mux.HandleFunc("POST /register", s.secure(s.handleRegister))
	mux.HandleFunc("POST /logout", s.secure(s.handleLogout))

	mux.HandleFunc("GET /dashboard", s.secure(s.requireUser(s.handleDashboard)))
	mux.HandleFunc("GET /transactions", s.secure(s.requireUser(s.handleTransactions)))
	mux.HandleFunc("GET /add-transaction", s.secure(s.requireUser(s.handleAddTransactionPage)))
	mux.HandleFunc("POST /transactions", s.secure(s.requireUser(s.handleCreateTransaction)))
	mux.HandleFunc("POST /transactions/{id}/delete", s.secure(s.requireUser(s.handleDeleteTransaction)))
	mux.HandleFunc("GET /transactions/{id}/edit", s.secure(s.requireUser(s.handleEditTransactionPage)))
	mux.HandleFunc("POST /transactions/{id}/edit", s.secure(s.requireUser(s.handleEditTransaction)))
	mux.HandleFunc("GET /reports", s.secure(s.requireUser(s.handleReports)))
	mux.HandleFunc("GET /reports/export", s.secure(s.requireUser(s.handleReportExport)))
	mux.HandleFunc("GET /activity-logs", s.secure(s.requireUser(s.handleActivity)))
	mux.HandleFunc("GET /profile", s.secure(s.requireUser(s.handleProfile)))

	return s
}

// Shutdown stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.janitor != nil {
			s.janitor.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// secure adds security headers, request logging and rate limiting on
// mutations.
func (s *Server) secure(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			fields := log.NewFields().
				WithRequestID(requestID).
				WithClientIP(clientIP)
			fields[log.FieldPath] = r.URL.Path
			s.logger.WarnContext(ctx, "rate limit exceeded", fields.ToSlice()...)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		fields := log.NewFields().
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTP(r.Method, r.URL.Path, rw.status).
			WithDuration(time.Since(start))
		s.logger.InfoContext(ctx, "request completed", fields.ToSlice()...)
	}
}

type requestIDKey struct{}

// requireUser redirects to the login page when nobody is signed in.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.Current() == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Current() == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, PageDashboard.Path(), http.StatusSeeOther)
}

// getCategories returns the category catalog, refreshed at most every
// few minutes. A fetch failure falls back to the last known catalog so
// pages still render with raw keys.
func (s *Server) getCategories(ctx context.Context) core.CategorySet {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	if !s.categories.IsEmpty() && time.Since(s.catFetched) < categoryTTL {
		return s.categories
	}
	cats, err := s.backend.GetCategories(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "category fetch failed", log.FieldError, err.Error())
		return s.categories
	}
	s.categories = cats
	s.catFetched = time.Now()
	return s.categories
}

// invalidateReport drops the cached report for the month a transaction
// falls in.
func (s *Server) invalidateReport(d core.Date) {
	s.reportCache.Invalidate(d.MonthKey())
}

// clearCaches drops all state derived from the previous session: the
// category catalog and every cached report view.
func (s *Server) clearCaches() {
	s.catMu.Lock()
	s.categories = core.CategorySet{}
	s.catFetched = time.Time{}
	s.catMu.Unlock()
	s.reportCache.Purge()
}
