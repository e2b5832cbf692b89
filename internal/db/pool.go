// Package db opens PostgreSQL connections directly from a flat connection
// options mapping, for the paths that bypass the tools service.
package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlpilot/sqlpilot/internal/logger"
)

// optionKeyMap translates connection-details keys to libpq parameter names.
// Keys not listed pass through unchanged.
var optionKeyMap = map[string]string{
	"connectTimeout":  "connect_timeout",
	"clientEncoding":  "client_encoding",
	"applicationName": "application_name",
}

// ResolveConnString picks the connection string for the options mapping.
// A non-empty "connectionString" entry is authoritative and returned as-is;
// the remaining discrete options are ignored. Otherwise the discrete options
// render as a keyword/value string.
func ResolveConnString(options map[string]any) string {
	if raw, ok := options["connectionString"].(string); ok && raw != "" {
		return raw
	}

	discrete := make(map[string]any, len(options))
	for k, v := range options {
		if k == "connectionString" {
			continue
		}
		discrete[k] = v
	}
	return BuildConnString(discrete)
}

// BuildConnString renders the options mapping as a keyword/value libpq
// connection string. Keys are emitted in sorted order so output is stable.
func BuildConnString(options map[string]any) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		name, ok := optionKeyMap[k]
		if !ok {
			name = k
		}
		value := fmt.Sprintf("%v", options[k])
		// libpq quoting: single quotes around the value, backslash-escape
		// embedded quotes and backslashes.
		value = strings.ReplaceAll(value, `\`, `\\`)
		value = strings.ReplaceAll(value, `'`, `\'`)
		parts = append(parts, fmt.Sprintf("%s='%s'", name, value))
	}
	return strings.Join(parts, " ")
}

// NewPool creates a pgx connection pool from the options mapping.
func NewPool(ctx context.Context, options map[string]any) (*pgxpool.Pool, error) {
	logger.Debug("creating connection pool",
		"host", options["host"],
		"dbname", options["dbname"],
		"user", options["user"],
	)

	poolConfig, err := pgxpool.ParseConfig(ResolveConnString(options))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection options: %w", err)
	}

	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	if _, ok := options["applicationName"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = "sqlpilot"
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := ValidateConnection(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connection pool created",
		"host", options["host"],
		"dbname", options["dbname"],
	)

	return pool, nil
}

// ValidateConnection checks the pool answers a trivial query.
func ValidateConnection(ctx context.Context, pool *pgxpool.Pool) error {
	var version string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("connection validation failed: %w", err)
	}
	return nil
}

// GetServerVersion retrieves the PostgreSQL server version string.
func GetServerVersion(ctx context.Context, pool *pgxpool.Pool) (string, error) {
	var version string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get server version: %w", err)
	}
	return version, nil
}

// TestConnection reports whether a connection can be established with the
// given options.
func TestConnection(ctx context.Context, options map[string]any) error {
	pool, err := NewPool(ctx, options)
	if err != nil {
		return err
	}
	defer pool.Close()

	return nil
}
