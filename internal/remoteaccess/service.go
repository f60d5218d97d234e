// Package remoteaccess listens for incoming remote-assistance connection
// requests. A request to start a session brings the application window up
// through the launcher the service was created with.
package remoteaccess

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/awsl-project/hostlink/internal/launcher"
)

const (
	// DefaultAddr is the loopback address the service listens on.
	DefaultAddr = "127.0.0.1:9877"
	// DefaultShutdownTimeout bounds Dispose.
	DefaultShutdownTimeout = 5 * time.Second

	closeWriteTimeout = time.Second
)

var (
	ErrAlreadyInitialized = errors.New("remoteaccess: service already initialized")
	ErrNotInitialized     = errors.New("remoteaccess: service not initialized")
)

// Config configures a Service.
type Config struct {
	Addr            string
	Secret          string // empty disables token checks
	ShutdownTimeout time.Duration
}

// Service accepts connection requests until disposed. One Service serves one
// Initialize/Dispose pair; create a new one after Dispose.
type Service struct {
	cfg      Config
	launcher launcher.Launcher
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	running  bool
	listener net.Listener
	server   *http.Server
	sessions map[string]*session
	served   chan struct{}
}

// New creates a service bound to l.
func New(cfg Config, l launcher.Launcher, logger *zap.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		launcher: l,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Initialize binds the listen address and starts serving. The bind happens
// before Initialize returns so address errors surface to the caller.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyInitialized
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/connect", s.handleConnect)
	mux.Handle("/status", compressed(http.HandlerFunc(s.handleStatus)))

	s.listener = ln
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.served = make(chan struct{})
	s.running = true

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", zap.Error(err))
		}
	}(s.server, s.served)

	s.logger.Info("Listening for connection requests", zap.String("addr", ln.Addr().String()))
	return nil
}

// Dispose stops accepting requests, closes every session and shuts the HTTP
// server down. It returns once the serve loop has exited.
func (s *Service) Dispose() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	s.running = false
	srv, served := s.server, s.served
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	s.logger.Info("Stopping", zap.Int("sessions", len(sessions)))

	// Hijacked WebSocket connections are not tracked by http.Server.
	var g errgroup.Group
	for _, sess := range sessions {
		g.Go(sess.close)
	}
	if err := g.Wait(); err != nil {
		s.logger.Debug("Session close error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("Graceful shutdown failed, forcing close", zap.Error(err))
		if closeErr := srv.Close(); closeErr != nil {
			shutdownErr = fmt.Errorf("failed to close server: %w", closeErr)
		}
	}
	<-served

	s.logger.Info("Stopped")
	return shutdownErr
}

// Addr returns the bound address, or the configured one before Initialize.
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// Running reports whether the service is between Initialize and Dispose.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type statusResponse struct {
	Running  bool   `json:"running"`
	Sessions int    `json:"sessions"`
	Address  string `json:"address"`
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := statusResponse{Running: s.running, Sessions: len(s.sessions)}
	if s.listener != nil {
		resp.Address = s.listener.Addr().String()
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Service) authorized(r *http.Request) bool {
	if s.cfg.Secret == "" {
		return true
	}
	token := requestToken(r)
	return token != "" && ValidateToken(s.cfg.Secret, token)
}
