// Package web serves the daemon's Prometheus metrics and a small JSON status
// API over HTTP. Binds to localhost only: no network exposure, no auth needed.
package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/adapters/socket"
	"github.com/corey/unitylens/internal/ports"
)

// Queries provides read access to daemon state.
type Queries interface {
	Health() socket.HealthResult
	Features() socket.FeaturesResult
	Notifications(since time.Time) []ports.Notification
}

// Server serves /metrics and the JSON API.
type Server struct {
	queries  Queries
	metrics  http.Handler
	logger   *zap.Logger
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .unitylens/run/http.port
}

// NewServer creates the HTTP server. metrics may be nil, in which case
// /metrics answers 404. The bound port is written to portFilePath for
// discovery.
func NewServer(queries Queries, metrics http.Handler, portFilePath string, logger *zap.Logger) *Server {
	if metrics == nil {
		metrics = http.NotFoundHandler()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		queries:      queries,
		metrics:      metrics,
		logger:       logger,
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Start begins listening on the preferred port (0 picks a free one) and
// writes the bound port to the port file.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{Handler: s.routes(), ReadHeaderTimeout: 5 * time.Second}

	if s.portFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(s.portFilePath), 0o755); err == nil {
			if err := os.WriteFile(s.portFilePath, []byte(strconv.Itoa(s.port)), 0o644); err != nil {
				s.logger.Warn("write port file", zap.String("path", s.portFilePath), zap.Error(err))
			}
		}
	}

	go s.httpSrv.Serve(ln)
	s.logger.Info("http server listening", zap.String("url", s.URL()))
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" && s.listener != nil {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// ReadPort reads the port a running daemon wrote to portFilePath.
func ReadPort(portFilePath string) (int, error) {
	data, err := os.ReadFile(portFilePath)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", portFilePath, err)
	}
	return port, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", s.metrics)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/features", s.handleFeatures)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := s.queries.Health()
	result.Uptime = time.Since(s.started).Round(time.Second).String()
	writeJSON(w, result)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.queries.Features())
}

// handleNotifications accepts ?since=<unix nanoseconds>.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		ns, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, `{"error":"invalid since"}`, http.StatusBadRequest)
			return
		}
		since = time.Unix(0, ns)
	}
	n := s.queries.Notifications(since)
	if n == nil {
		n = []ports.Notification{}
	}
	writeJSON(w, socket.NotificationsResult{Notifications: n})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
