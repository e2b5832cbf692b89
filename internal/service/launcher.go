package service

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/sqlpilot/sqlpilot/internal/logger"
)

const defaultStartupTimeout = 10 * time.Second

// Launcher starts the tools service process and waits for its socket to
// come up.
type Launcher struct {
	// BinaryPath is the tools service executable. When empty, the
	// platform-specific binary name is resolved on PATH.
	BinaryPath string
	// SocketPath is where the service should listen. Empty means the
	// platform default.
	SocketPath string
	// StartupTimeout bounds how long to wait for the socket.
	StartupTimeout time.Duration
}

// Session is a running tools service process plus a connected client.
type Session struct {
	Client *Client
	cmd    *exec.Cmd
}

// Close disconnects the client and stops the service process.
func (s *Session) Close() error {
	if s.Client != nil {
		s.Client.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("failed to stop tools service: %w", err)
		}
		s.cmd.Wait()
	}
	return nil
}

// Start launches the service and connects to it.
func (l *Launcher) Start(ctx context.Context) (*Session, error) {
	bin := l.BinaryPath
	if bin == "" {
		name, err := ServiceBinaryName()
		if err != nil {
			return nil, err
		}
		path, err := exec.LookPath(name)
		if err != nil {
			return nil, fmt.Errorf("tools service binary %q not found: %w", name, err)
		}
		bin = path
	}

	socket := l.SocketPath
	if socket == "" {
		socket = DefaultSocketPath()
	}

	cmd := exec.CommandContext(ctx, bin, "--socket", socket)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start tools service: %w", err)
	}
	logger.Info("tools service started", "binary", bin, "pid", cmd.Process.Pid, "socket", socket)

	client, err := l.waitForSocket(ctx, socket)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, err
	}

	return &Session{Client: client, cmd: cmd}, nil
}

// waitForSocket polls the socket until the service answers or the timeout
// elapses.
func (l *Launcher) waitForSocket(ctx context.Context, socket string) (*Client, error) {
	timeout := l.StartupTimeout
	if timeout == 0 {
		timeout = defaultStartupTimeout
	}
	deadline := time.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		client, err := NewClient(socket)
		if err == nil {
			return client, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("tools service did not come up within %s: %w", timeout, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
