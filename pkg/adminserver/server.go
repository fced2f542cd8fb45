// Package adminserver exposes a small HTTP surface — liveness and a
// handful of counters — alongside the store connection, for operators
// to probe without going through the store protocol itself.
package adminserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/jontk/slurm-redis-jobcomp/pkg/logging"
)

// Pinger is the subset of client behavior the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counters tracks operation counts the /metrics endpoint reports. All
// fields are updated with atomic adds from arbitrary goroutines.
type Counters struct {
	JobsWritten int64
	QueriesRun  int64
	JobsFetched int64
	StoreErrors int64
}

// IncJobsWritten records one successful job write.
func (c *Counters) IncJobsWritten() { atomic.AddInt64(&c.JobsWritten, 1) }

// IncQueriesRun records one completed query.
func (c *Counters) IncQueriesRun() { atomic.AddInt64(&c.QueriesRun, 1) }

// AddJobsFetched records n jobs returned by a query.
func (c *Counters) AddJobsFetched(n int64) { atomic.AddInt64(&c.JobsFetched, n) }

// IncStoreErrors records one store-facing operation failure.
func (c *Counters) IncStoreErrors() { atomic.AddInt64(&c.StoreErrors, 1) }

func (c *Counters) snapshot() Counters {
	return Counters{
		JobsWritten: atomic.LoadInt64(&c.JobsWritten),
		QueriesRun:  atomic.LoadInt64(&c.QueriesRun),
		JobsFetched: atomic.LoadInt64(&c.JobsFetched),
		StoreErrors: atomic.LoadInt64(&c.StoreErrors),
	}
}

// Server is the admin HTTP surface: /healthz probes the store
// connection, /metrics reports the counters.
type Server struct {
	router   *mux.Router
	pinger   Pinger
	counters *Counters
	logger   logging.Logger
}

// New builds a Server backed by pinger's liveness check and counters'
// running totals.
func New(pinger Pinger, counters *Counters, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	s := &Server{
		router:   mux.NewRouter(),
		pinger:   pinger,
		counters: counters,
		logger:   logger,
	}
	s.router.Use(s.loggingMiddleware)
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("admin request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "unavailable", Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.counters.snapshot())
}
