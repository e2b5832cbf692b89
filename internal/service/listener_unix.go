//go:build !windows

package service

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// createListener listens on a Unix domain socket at path. The socket mode
// is tightened to owner-only before any client can connect: the transport
// carries credentials.
func createListener(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", path, err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		listener.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to restrict socket permissions: %w", err)
	}

	return listener, nil
}

// Dial connects to the tools service socket at path, or the platform
// default when path is empty.
func Dial(path string) (net.Conn, error) {
	if path == "" {
		path = DefaultSocketPath()
	}
	return net.Dial("unix", path)
}
