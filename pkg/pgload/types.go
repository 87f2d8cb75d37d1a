package pgload

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Target describes one PostgreSQL sink. It is resolved before a load starts
// and never mutated during one.
type Target struct {
	Name     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Table    string
	SSLMode  string
	AppName  string

	// Mode selects the load strategy. ModeAuto derives it from Host.
	Mode ConnectivityMode

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Cloud IAM parameters, used by the matching AuthMethod only.
	AWSRegion         string
	GoogleInstance    string
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// DisplayName returns Name, falling back to host/database.
func (t *Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("%s/%s", t.Host, t.Database)
}

// Validate checks the fields every load needs.
// It returns a multi-error if multiple validation failures occur.
func (t *Target) Validate() error {
	var errs []error

	if t.Host == "" && t.AuthMethod != AuthMethodGoogleIAM {
		errs = append(errs, fmt.Errorf("target %q: host is required: %w", t.Name, ErrInvalidConfig))
	}
	if t.Database == "" {
		errs = append(errs, fmt.Errorf("target %q: database is required: %w", t.Name, ErrInvalidConfig))
	}
	if t.Table == "" {
		errs = append(errs, fmt.Errorf("target %q: table is required: %w", t.Name, ErrInvalidConfig))
	}
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Errorf("target %q: port %d out of range: %w", t.Name, t.Port, ErrInvalidConfig))
	}
	if !t.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("target %q: unknown mode %v: %w", t.Name, t.Mode, ErrInvalidConfig))
	}
	if !t.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("target %q: unknown auth method %v: %w", t.Name, t.AuthMethod, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectivityMode selects between server-side file ingestion and piping
// through an external client.
type ConnectivityMode int

const (
	ModeAuto       ConnectivityMode = iota // derive from the host
	ModeDirect                             // server reads files from local paths
	ModeRemotePipe                         // client streams files over the connection
)

// String returns the config/flag spelling of the mode.
func (m ConnectivityMode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeDirect:
		return "direct"
	case ModeRemotePipe:
		return "pipe"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// IsValid returns true if the mode is a defined value.
func (m ConnectivityMode) IsValid() bool {
	return m >= ModeAuto && m <= ModeRemotePipe
}

// ParseConnectivityMode parses "auto", "direct" or "pipe" (case-insensitive).
// The empty string is ModeAuto.
func ParseConnectivityMode(s string) (ConnectivityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "direct":
		return ModeDirect, nil
	case "pipe", "remote-pipe", "remote_pipe":
		return ModeRemotePipe, nil
	default:
		return ModeAuto, fmt.Errorf("unknown mode %q (want auto, direct or pipe): %w", s, ErrInvalidConfig)
	}
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod parses the config spelling of an auth method.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam", "aws_iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "google_iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id", "azure_entra_id", "entra":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("unknown auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// StepSet is a set of post-processing step names.
// The zero value is an empty set ready for use.
type StepSet map[string]struct{}

// NewStepSet builds a set from names, lower-casing and trimming each one.
func NewStepSet(names ...string) StepSet {
	s := make(StepSet, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Has reports whether name is in the set.
func (s StepSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in sorted order.
func (s StepSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadRequest holds the inputs of a single load.
type LoadRequest struct {
	// EventsDir is searched recursively for EventFilePattern files.
	EventsDir string

	Target Target

	// SkipSteps names default steps to omit (e.g. "analyze").
	SkipSteps StepSet

	// IncludeSteps names optional steps to add (e.g. "vacuum").
	IncludeSteps StepSet
}

// Validate checks if the LoadRequest has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (r *LoadRequest) Validate() error {
	var errs []error

	if r.EventsDir == "" {
		errs = append(errs, fmt.Errorf("EventsDir is required: %w", ErrInvalidConfig))
	}
	if err := r.Target.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
