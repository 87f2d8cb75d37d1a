package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token is acquired from a TokenProvider and used as the PostgreSQL password.
type TokenBasedConnector struct {
	target        *pgload.Target
	tokenProvider TokenProvider
	providerName  string
	warnings      io.Writer
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error/warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(target *pgload.Target, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	if tokenProvider == nil {
		panic("tokenProvider cannot be nil")
	}
	return &TokenBasedConnector{
		target:        target,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		warnings:      os.Stderr,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (pgload.Conn, error) {
	token, err := c.Password(ctx)
	if err != nil {
		return nil, err
	}
	return connect(ctx, c.target, token)
}

// Password acquires a fresh token. It lets the connector serve as the
// pgload.PasswordProvider of external clients.
func (c *TokenBasedConnector) Password(ctx context.Context) (string, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
	}

	if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
		fmt.Fprintf(c.warnings, "Warning: %s token expires in %v\n", c.providerName, remaining.Round(time.Second))
	}
	return token, nil
}
