package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgload/internal/psql"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// mockServer emulates how PostgreSQL runs a simple-protocol script: statements
// run in order and processing stops at the first error.
type mockServer struct {
	mu       sync.Mutex
	scripts  []string         // every ExecScript call, verbatim
	executed []string         // statements the server ran successfully
	failures map[string]error // statement -> error it raises
	closed   int
}

func newMockServer() *mockServer {
	return &mockServer{failures: map[string]error{}}
}

func (s *mockServer) failOn(stmt string, err error) {
	s.failures[stmt] = err
}

func (s *mockServer) connector() pgload.Connector {
	return &mockConnector{conn: &mockConn{server: s}}
}

func (s *mockServer) factory() pgload.ConnectorFactory {
	return func(*pgload.Target) (pgload.Connector, error) {
		return s.connector(), nil
	}
}

type mockConnector struct {
	conn pgload.Conn
	err  error
}

func (m *mockConnector) Connect(_ context.Context) (pgload.Conn, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}

type mockConn struct {
	server *mockServer
	panics bool
}

func (c *mockConn) ExecScript(_ context.Context, sql string) ([]pgconn.CommandTag, error) {
	if c.panics {
		panic("boom")
	}
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scripts = append(s.scripts, sql)
	var tags []pgconn.CommandTag
	for _, stmt := range strings.Split(sql, "\n") {
		if err, ok := s.failures[stmt]; ok {
			return tags, err
		}
		s.executed = append(s.executed, stmt)
		tags = append(tags, pgconn.NewCommandTag(commandTag(stmt)))
	}
	return tags, nil
}

func (c *mockConn) Close(_ context.Context) error {
	c.server.mu.Lock()
	defer c.server.mu.Unlock()
	c.server.closed++
	return nil
}

func commandTag(stmt string) string {
	switch {
	case strings.HasPrefix(stmt, "BEGIN"):
		return "BEGIN"
	case strings.HasPrefix(stmt, "COMMIT"):
		return "COMMIT"
	case strings.HasPrefix(stmt, "COPY"):
		return "COPY 1"
	case strings.HasPrefix(stmt, "VACUUM ANALYZE"), strings.HasPrefix(stmt, "VACUUM"):
		return "VACUUM"
	case strings.HasPrefix(stmt, "ANALYZE"):
		return "ANALYZE"
	default:
		return "SELECT 1"
	}
}

type invocation struct {
	inv   psql.Invocation
	stdin string
}

type mockRunner struct {
	calls    []invocation
	failures map[int]error // call index -> error
}

func (r *mockRunner) Run(_ context.Context, inv psql.Invocation) error {
	var stdin string
	if inv.Stdin != nil {
		data, err := io.ReadAll(inv.Stdin)
		if err != nil {
			return err
		}
		stdin = string(data)
	}
	r.calls = append(r.calls, invocation{inv: inv, stdin: stdin})
	if err, ok := r.failures[len(r.calls)-1]; ok {
		return err
	}
	return nil
}

type mockPasswordProvider struct {
	passwords []string
	calls     int
	err       error
}

func (p *mockPasswordProvider) Password(_ context.Context) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	pw := p.passwords[p.calls%len(p.passwords)]
	p.calls++
	return pw, nil
}

func (p *mockPasswordProvider) factory() pgload.PasswordProviderFactory {
	return func(*pgload.Target) (pgload.PasswordProvider, error) {
		return p, nil
	}
}

type mockScanner struct {
	files []string
	err   error
}

func (m *mockScanner) EventFiles(_ string) ([]string, error) {
	return m.files, m.err
}

type mockLogger struct{}

func (m *mockLogger) Verbose(_ string, _ ...interface{}) {}
func (m *mockLogger) Info(_ string, _ ...interface{})    {}
func (m *mockLogger) Error(_ string, _ ...interface{})   {}

type recordingLogger struct {
	mu    sync.Mutex
	infos []string
}

func (l *recordingLogger) Verbose(_ string, _ ...interface{}) {}
func (l *recordingLogger) Error(_ string, _ ...interface{})   {}
func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}
