//go:build windows

package service

import (
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
)

// createListener listens on a named pipe at path. The zero security
// descriptor limits the pipe to its creator, matching the owner-only
// socket mode on Unix.
func createListener(path string) (net.Listener, error) {
	listener, err := winio.ListenPipe(path, &winio.PipeConfig{
		InputBufferSize:  65536,
		OutputBufferSize: 65536,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to listen on pipe %s: %w", path, err)
	}
	return listener, nil
}

// Dial connects to the tools service pipe at path, or the platform default
// when path is empty.
func Dial(path string) (net.Conn, error) {
	if path == "" {
		path = DefaultSocketPath()
	}
	return winio.DialPipe(path, nil)
}
