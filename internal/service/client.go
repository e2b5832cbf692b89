package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client talks to the tools service over its socket. Calls are serialized;
// the transport is strict request/response.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	mu     sync.Mutex
}

// NewClient connects to the tools service at the given socket path.
func NewClient(path string) (*Client, error) {
	if path == "" {
		path = DefaultSocketPath()
	}

	conn, err := Dial(path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tools service socket: %w", err)
	}

	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call sends one request and waits for its response.
func (c *Client) Call(method string, params any) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := Request{
		ID:     uuid.New().String(),
		Method: method,
	}

	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = data
	}

	if err := c.conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if _, err := c.writer.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}
	if err := c.writer.WriteByte('\n'); err != nil {
		return nil, fmt.Errorf("failed to write newline: %w", err)
	}
	if err := c.writer.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush: %w", err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("response id %q does not match request id %q", resp.ID, req.ID)
	}

	return &resp, nil
}

// call is the typed wrapper over Call: it surfaces service errors and
// decodes the result payload into out.
func (c *Client) call(method string, params, out any) error {
	resp, err := c.Call(method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to parse result: %w", err)
	}
	return nil
}

// Connect asks the tools service to open a connection for ownerURI using
// the given connection options mapping.
func (c *Client) Connect(ownerURI string, options map[string]any) (*ConnectResult, error) {
	var result ConnectResult
	if err := c.call(MethodConnect, ConnectParams{OwnerURI: ownerURI, Options: options}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Disconnect closes the service-side connection for ownerURI.
func (c *Client) Disconnect(ownerURI string) error {
	return c.call(MethodDisconnect, DisconnectParams{OwnerURI: ownerURI}, nil)
}

// ExecuteString runs a query on the connection owned by ownerURI.
func (c *Client) ExecuteString(ownerURI, query string) (*ExecuteResult, error) {
	var result ExecuteResult
	if err := c.call(MethodExecuteString, ExecuteParams{OwnerURI: ownerURI, Query: query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Version returns the tools service version.
func (c *Client) Version() (*VersionResult, error) {
	var result VersionResult
	if err := c.call(MethodVersion, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Connector adapts the client to the connection.Connector interface for a
// fixed owner URI. A connect that the service reports as unsuccessful is an
// error.
type Connector struct {
	Client   *Client
	OwnerURI string
}

// Connect implements connection.Connector.
func (sc *Connector) Connect(ctx context.Context, options map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := sc.Client.Connect(sc.OwnerURI, options)
	if err != nil {
		return err
	}
	if !result.Connected {
		if result.ErrorMessage != "" {
			return fmt.Errorf("tools service refused connection: %s", result.ErrorMessage)
		}
		return fmt.Errorf("tools service refused connection")
	}
	return nil
}
