package service

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultSocketPath returns the default socket/pipe path for the current
// platform.
func DefaultSocketPath() string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\sqlpilot-tools`
	}
	return "/tmp/sqlpilot-tools.sock"
}

// Listener wraps a net.Listener for cross-platform local IPC.
type Listener struct {
	listener net.Listener
	path     string
}

// NewListener creates a listener at the given path: a Unix domain socket,
// or a named pipe on Windows.
func NewListener(path string) (*Listener, error) {
	if path == "" {
		path = DefaultSocketPath()
	}

	if err := cleanupStaleEndpoint(path); err != nil {
		return nil, fmt.Errorf("failed to cleanup stale endpoint: %w", err)
	}

	listener, err := createListener(path)
	if err != nil {
		return nil, err
	}

	return &Listener{
		listener: listener,
		path:     path,
	}, nil
}

// Accept waits for and returns the next connection.
func (l *Listener) Accept() (net.Conn, error) {
	return l.listener.Accept()
}

// Close closes the listener and removes the socket file on Unix.
func (l *Listener) Close() error {
	err := l.listener.Close()

	if runtime.GOOS != "windows" {
		os.Remove(l.path)
	}

	return err
}

// Path returns the socket/pipe path.
func (l *Listener) Path() string {
	return l.path
}

// cleanupStaleEndpoint removes a leftover socket file from a crashed
// service, refusing to clobber a live one.
func cleanupStaleEndpoint(path string) error {
	if runtime.GOOS == "windows" {
		// Named pipes are managed by the OS.
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	conn, err := net.Dial("unix", path)
	if err == nil {
		conn.Close()
		return fmt.Errorf("socket already in use by another process: %s", path)
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	return nil
}
