package testinfra

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// PostgresImage runs as a plain superuser so server-side COPY FROM '<file>' is allowed.
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "postgres"

	// EventsDir is where CopyEventFiles places files inside the container.
	EventsDir = "/var/lib/pgload/events"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

func StartSimplePostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

// CopyEventFiles writes files (relative name to content) below dir inside
// the container, where the server process can read them, and returns their
// absolute container paths in the order given by names.
func (c *PostgresContainer) CopyEventFiles(ctx context.Context, dir string, names []string, files map[string]string) ([]string, error) {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := path.Join(EventsDir, dir, name)
		if err := c.CopyToContainer(ctx, []byte(files[name]), p, 0o644); err != nil {
			return nil, fmt.Errorf("copy %s into container: %w", name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
