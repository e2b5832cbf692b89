package main

import (
	"context"
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/connection"
	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/models"
	"github.com/sqlpilot/sqlpilot/internal/service"
)

// queryTransport opens connections for the manager and runs queries over
// whichever transport the global flags selected.
type queryTransport interface {
	connection.Connector
	RunQuery(ctx context.Context, profile *models.ConnectionProfile, sql string) (*db.QueryResult, error)
}

// directTransport connects and queries in-process through a pgx pool.
type directTransport struct{}

func (directTransport) Connect(ctx context.Context, options map[string]any) error {
	return db.TestConnection(ctx, options)
}

func (directTransport) RunQuery(ctx context.Context, profile *models.ConnectionProfile, sql string) (*db.QueryResult, error) {
	details := models.CreateConnectionDetails(&profile.ConnectionCredentials)
	pool, err := db.NewPool(ctx, details.Options)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	return db.RunQuery(ctx, pool, sql)
}

// serviceTransport connects and queries through the tools service.
type serviceTransport struct {
	*service.Connector
}

func (s serviceTransport) RunQuery(ctx context.Context, _ *models.ConnectionProfile, sql string) (*db.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.Client.ExecuteString(s.OwnerURI, sql)
	if err != nil {
		return nil, err
	}
	if result.ErrorMessage != "" {
		return nil, fmt.Errorf("query failed: %s", result.ErrorMessage)
	}
	return &db.QueryResult{Columns: result.Columns, Rows: result.Rows}, nil
}

// newConnector returns the transport selected by the global flags: the
// tools service when a socket is configured or a service binary is given,
// otherwise a direct in-process connection. The cleanup func releases
// whatever the choice acquired.
func newConnector() (queryTransport, func(), error) {
	if socketPath == "" && serviceBin == "" {
		return directTransport{}, func() {}, nil
	}

	if serviceBin != "" {
		launcher := &service.Launcher{BinaryPath: serviceBin, SocketPath: socketPath}
		session, err := launcher.Start(context.Background())
		if err != nil {
			return nil, nil, err
		}
		connector := &service.Connector{Client: session.Client, OwnerURI: "sqlpilot://cli"}
		return serviceTransport{connector}, func() { session.Close() }, nil
	}

	client, err := service.NewClient(socketPath)
	if err != nil {
		return nil, nil, err
	}
	connector := &service.Connector{Client: client, OwnerURI: "sqlpilot://cli"}
	return serviceTransport{connector}, func() { client.Close() }, nil
}
