package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// GoogleCloudSQLConnector implements the Connector interface for Google Cloud SQL
// using IAM database authentication via the Cloud SQL Go Connector.
//
// Each connection owns its dialer; closing the connection releases it.
type GoogleCloudSQLConnector struct {
	target   *pgload.Target
	instance string
}

// NewGoogleCloudSQLConnector creates a connector for Google Cloud SQL IAM authentication.
// instance is the instance connection name in format: project:region:instance
func NewGoogleCloudSQLConnector(target *pgload.Target, instance string) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		target:   target,
		instance: instance,
	}
}

func newGoogleConnector(target *pgload.Target) (pgload.Connector, error) {
	if target.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", pgload.ErrInvalidConfig)
	}
	if target.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", pgload.ErrInvalidConfig)
	}
	return NewGoogleCloudSQLConnector(target, target.GoogleInstance), nil
}

// Connect dials the instance through the Cloud SQL connector, which handles
// IAM authentication and TLS.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (pgload.Conn, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	appName := c.target.AppName
	if appName == "" {
		appName = pgload.DefaultAppName
	}
	dsn := fmt.Sprintf(
		"host=%s user=%s dbname=%s sslmode=disable application_name=%s",
		c.instance,
		c.target.Username,
		c.target.Database,
		appName,
	)

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	connConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		dialer.Close()
		return nil, wrapConnectionError(err, c.instance, 0, c.target.Database)
	}

	return NewConnAdapter(conn, dialer.Close), nil
}
