package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/services"
)

type Server struct {
	http.Server
	imports   *services.ImportService
	summaries *services.SummaryService

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, imports *services.ImportService, summaries *services.SummaryService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		imports:   imports,
		summaries: summaries,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  security.NewDetector(),
	}

	traceMW := trace.NewMiddleware(s.detector.ExtractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limitMW := s.limiter.Middleware(s.detector.ExtractClientIP, nil)
	logMW := applog.Middleware(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP))

	// Rate limiting applies to mutating routes only; reads are cached and
	// cheap.
	api := func(h http.HandlerFunc) http.Handler {
		return traceMW.Middleware(logMW(headersMW.Middleware(s.withDetection(h))))
	}
	mutating := func(h http.HandlerFunc) http.Handler {
		return traceMW.Middleware(logMW(headersMW.Middleware(limitMW(s.withDetection(h)))))
	}

	mux.Handle("/import/csv", mutating(s.handleImportCSV))
	mux.Handle("/export/csv", api(s.handleExportCSV))
	mux.Handle("/summary", api(s.handleSummary))
	mux.Handle("/aggregates/monthly", api(s.handleMonthlyAggregates))
	mux.Handle("/aggregates/weekly", api(s.handleWeeklyAggregates))
	mux.Handle("/preferences", mutating(s.handlePreferences))
	mux.Handle("/budgets", mutating(s.handleBudgets))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// Shutdown stops the HTTP server and background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withDetection flags suspicious requests in the logs without blocking
// them.
func (s *Server) withDetection(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
