//go:build !windows

package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// writeStaleSocketFile leaves a dead socket file behind, as a crashed
// service would.
func writeStaleSocketFile(path string) error {
	l, err := createListener(path)
	if err != nil {
		return err
	}
	// Closing the raw listener does not unlink the file; wrap it so the
	// path stays occupied by a socket nothing answers on.
	type unlinkSuppressor interface{ SetUnlinkOnClose(bool) }
	if ul, ok := l.(unlinkSuppressor); ok {
		ul.SetUnlinkOnClose(false)
	}
	return l.Close()
}

// startTestServer runs a server on a temp socket and returns a connected
// client.
func startTestServer(t *testing.T) (*Server, *Client) {
	t.Helper()

	socket := filepath.Join(t.TempDir(), "svc.sock")
	server, err := NewServer(socket)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() { server.Stop() })

	client, err := NewClient(socket)
	if err != nil {
		t.Fatalf("failed to connect client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return server, client
}

func TestClientServerRoundTrip(t *testing.T) {
	server, client := startTestServer(t)

	server.RegisterHandler(MethodVersion, func(context.Context, json.RawMessage) (any, error) {
		return VersionResult{Version: "1.2.3"}, nil
	})

	result, err := client.Version()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Version != "1.2.3" {
		t.Errorf("expected 1.2.3, got %q", result.Version)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	_, client := startTestServer(t)

	resp, err := client.Call("no/such", nil)
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeMethodNotFound {
		t.Errorf("expected METHOD_NOT_FOUND, got %+v", resp.Error)
	}
}

func TestServerHandlerErrorCode(t *testing.T) {
	server, client := startTestServer(t)

	server.RegisterHandler(MethodConnect, func(context.Context, json.RawMessage) (any, error) {
		return nil, &HandlerError{Code: ErrCodeConnectionFailed, Message: "refused"}
	})

	_, err := client.Connect("sqlpilot://test", map[string]any{"host": "nowhere"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), ErrCodeConnectionFailed) {
		t.Errorf("expected the protocol code in the error, got: %v", err)
	}
}

func TestServerInternalErrorFallback(t *testing.T) {
	server, client := startTestServer(t)

	server.RegisterHandler(MethodVersion, func(context.Context, json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := client.Version()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), ErrCodeInternalError) {
		t.Errorf("plain errors map to INTERNAL_ERROR, got: %v", err)
	}
}

func TestClientConnectForwardsParams(t *testing.T) {
	server, client := startTestServer(t)

	var got ConnectParams
	server.RegisterHandler(MethodConnect, func(_ context.Context, params json.RawMessage) (any, error) {
		if err := json.Unmarshal(params, &got); err != nil {
			return nil, err
		}
		return ConnectResult{Connected: true, ServerVersion: "PostgreSQL 17.0"}, nil
	})

	result, err := client.Connect("sqlpilot://cli", map[string]any{
		"host":   "db.example.com",
		"port":   float64(5432),
		"dbname": "orders",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Connected {
		t.Error("expected connected result")
	}
	if got.OwnerURI != "sqlpilot://cli" {
		t.Errorf("expected owner URI forwarded, got %q", got.OwnerURI)
	}
	if got.Options["host"] != "db.example.com" {
		t.Errorf("expected options forwarded, got %v", got.Options)
	}
}

func TestClientExecuteString(t *testing.T) {
	server, client := startTestServer(t)

	server.RegisterHandler(MethodExecuteString, func(_ context.Context, params json.RawMessage) (any, error) {
		var p ExecuteParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		if p.Query != "SELECT 1" {
			return nil, &HandlerError{Code: ErrCodeQueryFailed, Message: "unexpected query"}
		}
		return ExecuteResult{
			Columns:  []string{"?column?"},
			Rows:     [][]string{{"1"}},
			RowCount: 1,
		}, nil
	})

	result, err := client.ExecuteString("sqlpilot://cli", "SELECT 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0][0] != "1" {
		t.Errorf("unexpected rows: %v", result.Rows)
	}
}

func TestConnectorRejectsUnconnectedResult(t *testing.T) {
	server, client := startTestServer(t)

	server.RegisterHandler(MethodConnect, func(context.Context, json.RawMessage) (any, error) {
		return ConnectResult{Connected: false, ErrorMessage: "password authentication failed"}, nil
	})

	connector := &Connector{Client: client, OwnerURI: "sqlpilot://cli"}
	err := connector.Connect(context.Background(), map[string]any{"host": "db"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "password authentication failed") {
		t.Errorf("service message should surface, got: %v", err)
	}
}

func TestListenerRefusesLiveSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "live.sock")

	first, err := NewListener(socket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer first.Close()

	if _, err := NewListener(socket); err == nil {
		t.Fatal("a second listener on a live socket must fail")
	}
}

func TestListenerReplacesStaleSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "stale.sock")

	first, err := NewListener(socket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Simulate a crash leaving the socket file behind: close the listener
	// but re-create the file.
	first.Close()
	if err := writeStaleSocketFile(socket); err != nil {
		t.Fatalf("failed to fake stale socket: %v", err)
	}

	second, err := NewListener(socket)
	if err != nil {
		t.Fatalf("stale socket should be cleaned up, got: %v", err)
	}
	second.Close()
}

func TestBinaryNameFor(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "sqltoolsservice", false},
		{"darwin", "arm64", "sqltoolsservice", false},
		{"windows", "amd64", "sqltoolsservice.exe", false},
		{"freebsd", "amd64", "", true},
		{"linux", "mips", "", true},
	}

	for _, tt := range tests {
		got, err := binaryNameFor(tt.goos, tt.goarch)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s/%s: expected error", tt.goos, tt.goarch)
			}
			var perr *PlatformNotSupportedError
			if !errors.As(err, &perr) {
				t.Errorf("%s/%s: expected PlatformNotSupportedError, got %T", tt.goos, tt.goarch, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s/%s: unexpected error: %v", tt.goos, tt.goarch, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s/%s: expected %s, got %s", tt.goos, tt.goarch, tt.want, got)
		}
	}
}
