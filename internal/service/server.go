package service

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/sqlpilot/sqlpilot/internal/logger"
)

// Handler handles one method of the tools-service protocol.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// HandlerError carries a protocol error code back to the client.
type HandlerError struct {
	Code    string
	Message string
}

func (e *HandlerError) Error() string {
	return e.Message
}

// Server accepts socket connections and routes requests to handlers. The
// real tools service runs this loop in its own process; tests run it
// in-process against a temp socket.
type Server struct {
	listener *Listener
	handlers map[string]Handler

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewServer creates a server listening at path.
func NewServer(path string) (*Server, error) {
	listener, err := NewListener(path)
	if err != nil {
		return nil, err
	}

	return &Server{
		listener: listener,
		handlers: make(map[string]Handler),
	}, nil
}

// RegisterHandler registers a handler for a method.
func (s *Server) RegisterHandler(method string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
}

// Start begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	logger.Info("tools service listening", "path", s.listener.Path())

	go s.acceptLoop(ctx)

	return nil
}

// Stop stops the server and waits for in-flight connections.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	err := s.listener.Close()
	s.wg.Wait()

	logger.Info("tools service stopped")
	return err
}

// Path returns the socket path the server listens on.
func (s *Server) Path() string {
	return s.listener.Path()
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return
			}
			logger.Warn("tools service accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				logger.Warn("tools service read error", "error", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			resp := NewErrorResponse("", ErrCodeInvalidRequest, fmt.Sprintf("invalid JSON: %v", err))
			s.writeResponse(writer, resp)
			continue
		}

		logger.Debug("tools service request", "method", req.Method, "id", req.ID)

		resp := s.handleRequest(ctx, req)

		if err := s.writeResponse(writer, resp); err != nil {
			logger.Warn("tools service write error", "error", err)
			return
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) Response {
	s.mu.Lock()
	handler, ok := s.handlers[req.Method]
	s.mu.Unlock()

	if !ok {
		return NewErrorResponse(req.ID, ErrCodeMethodNotFound,
			fmt.Sprintf("unknown method: %s", req.Method))
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		var herr *HandlerError
		if errors.As(err, &herr) {
			return NewErrorResponse(req.ID, herr.Code, herr.Message)
		}
		return NewErrorResponse(req.ID, ErrCodeInternalError, err.Error())
	}

	resp, err := NewSuccessResponse(req.ID, result)
	if err != nil {
		return NewErrorResponse(req.ID, ErrCodeInternalError,
			fmt.Sprintf("failed to marshal response: %v", err))
	}

	return resp
}

func (s *Server) writeResponse(w *bufio.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
