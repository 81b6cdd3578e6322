package socket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/ports"
)

// ErrUnavailable is returned by a Handler for a method whose feature is not
// active. The server reports it like an unknown method.
var ErrUnavailable = errors.New("method not available")

// Handler serves the protocol methods. Implementations must be safe for
// concurrent use: every connection runs in its own goroutine.
type Handler interface {
	Health() HealthResult
	Features() FeaturesResult
	CodeLens(ctx context.Context, p DocumentParams) (CodeLensResult, error)
	Hover(ctx context.Context, p HoverParams) (HoverResult, error)
	ExecuteCommand(ctx context.Context, p ExecuteCommandParams) (any, error)
	DidRenameFiles(ctx context.Context, p RenameFilesParams) (FileOpsResult, error)
	DidDeleteFiles(ctx context.Context, p DeleteFilesParams) (FileOpsResult, error)
	Notifications(since time.Time) []ports.Notification
}

// Server is the daemon that listens on a Unix socket and serves host requests.
type Server struct {
	handler  Handler
	logger   *zap.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	ctx    context.Context
	cancel context.CancelFunc

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server dispatching to handler.
func NewServer(handler Handler, sockPath string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		handler:    handler,
		logger:     logger,
		sockPath:   sockPath,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first: if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info("socket server listening", zap.String("path", s.sockPath))
	return nil
}

// Stop closes the listener, cancels in-flight requests, waits for open
// connections and removes the socket file. Idempotent: safe to call after a
// remote shutdown and again on a signal.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		s.cancel()
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		if s.listener != nil {
			os.Remove(s.sockPath)
		}
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner when the server stops.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-s.done:
			conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024) // documents travel inline

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	result, err := s.dispatch(req)
	if errors.Is(err, ErrUnavailable) {
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
	if err != nil {
		s.logger.Debug("request failed", zap.String("method", req.Method), zap.Error(err))
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) dispatch(req Request) (any, error) {
	ctx := s.ctx
	switch req.Method {
	case MethodHealth:
		h := s.handler.Health()
		h.Uptime = time.Since(s.started).Round(time.Second).String()
		return h, nil
	case MethodShutdown:
		return struct{}{}, nil
	case MethodFeatures:
		return s.handler.Features(), nil
	case MethodCodeLens:
		var p DocumentParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.handler.CodeLens(ctx, p)
	case MethodHover:
		var p HoverParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.handler.Hover(ctx, p)
	case MethodExecuteCommand:
		var p ExecuteCommandParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.handler.ExecuteCommand(ctx, p)
	case MethodDidRenameFiles:
		var p RenameFilesParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.handler.DidRenameFiles(ctx, p)
	case MethodDidDeleteFiles:
		var p DeleteFilesParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.handler.DidDeleteFiles(ctx, p)
	case MethodNotifications:
		var p NotificationsParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		var since time.Time
		if p.Since > 0 {
			since = time.Unix(0, p.Since)
		}
		n := s.handler.Notifications(since)
		if n == nil {
			n = []ports.Notification{}
		}
		return NotificationsResult{Notifications: n}, nil
	default:
		return nil, ErrUnavailable
	}
}

// decodeParams re-marshals the generic params into a typed struct.
func decodeParams(req Request, dst any) error {
	if req.Params == nil {
		return nil
	}
	data, err := json.Marshal(req.Params)
	if err != nil {
		return fmt.Errorf("invalid %s params", req.Method)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid %s params", req.Method)
	}
	return nil
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("marshal response", zap.Error(err))
		data, _ = json.Marshal(Response{ID: resp.ID, Error: "unencodable result"})
	}
	data = append(data, '\n')
	conn.Write(data)
}
