package db

import (
	"context"
	"fmt"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// StaticPassword is a PasswordProvider for a password known up front.
// The empty string leaves authentication to ~/.pgpass.
type StaticPassword string

func (p StaticPassword) Password(context.Context) (string, error) {
	return string(p), nil
}

// NewPasswordProvider returns the password source for external clients
// connecting to target. Google Cloud SQL IAM authenticates through a dialer
// rather than a password, so it has no provider.
func NewPasswordProvider(target *pgload.Target) (pgload.PasswordProvider, error) {
	switch target.AuthMethod {
	case pgload.AuthMethodStandard:
		return StaticPassword(target.Password), nil
	case pgload.AuthMethodAWSIAM:
		provider, err := newAWSTokenProvider(target)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(target, provider, "AWS IAM"), nil
	case pgload.AuthMethodAzureEntraID:
		provider, err := newAzureTokenProvider(target)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(target, provider, "Azure"), nil
	default:
		return nil, fmt.Errorf("%v has no password for external clients: %w", target.AuthMethod, pgload.ErrUnsupportedAuthMethod)
	}
}
