// Package service launches the out-of-process SQL tools service and talks
// to it over a newline-delimited JSON request/response transport on a Unix
// domain socket (named pipe on Windows).
package service

import "encoding/json"

// Request is a single call from the client to the tools service.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response answers one request, matched by ID.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Error is a failed call's payload.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeMethodNotFound   = "METHOD_NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeConnectionFailed = "CONNECTION_FAILED"
	ErrCodeNotConnected     = "NOT_CONNECTED"
	ErrCodeQueryFailed      = "QUERY_FAILED"
)

// Method names.
const (
	MethodConnect       = "connection/connect"
	MethodDisconnect    = "connection/disconnect"
	MethodExecuteString = "query/executeString"
	MethodVersion       = "service/version"
)

// ConnectParams are the parameters for connection/connect. Options is the
// flat connection options mapping produced from credentials.
type ConnectParams struct {
	OwnerURI string         `json:"ownerUri"`
	Options  map[string]any `json:"options"`
}

// ConnectResult is the result of connection/connect.
type ConnectResult struct {
	Connected     bool   `json:"connected"`
	ServerVersion string `json:"serverVersion,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

// DisconnectParams are the parameters for connection/disconnect.
type DisconnectParams struct {
	OwnerURI string `json:"ownerUri"`
}

// ExecuteParams are the parameters for query/executeString.
type ExecuteParams struct {
	OwnerURI string `json:"ownerUri"`
	Query    string `json:"query"`
}

// ExecuteResult is the result of query/executeString.
type ExecuteResult struct {
	Columns      []string   `json:"columns"`
	Rows         [][]string `json:"rows"`
	RowCount     int64      `json:"rowCount"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// VersionResult is the result of service/version.
type VersionResult struct {
	Version string `json:"version"`
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id string, code, message string) Response {
	return Response{
		ID: id,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	}
}

// NewSuccessResponse creates a success response.
func NewSuccessResponse(id string, result any) (Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return Response{}, err
	}
	return Response{
		ID:     id,
		Result: data,
	}, nil
}
