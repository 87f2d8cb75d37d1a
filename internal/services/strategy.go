package services

import (
	"fmt"
	"strings"

	"github.com/vvka-141/pgload/internal/statement"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// ModeDetector derives a connectivity mode from a target when none is configured.
type ModeDetector interface {
	Detect(target *pgload.Target) pgload.ConnectivityMode
}

// HostMarkerDetector selects remote pipe mode for hosts containing Marker.
type HostMarkerDetector struct {
	Marker string
}

func (d HostMarkerDetector) Detect(target *pgload.Target) pgload.ConnectivityMode {
	if d.Marker != "" && strings.Contains(target.Host, d.Marker) {
		return pgload.ModeRemotePipe
	}
	return pgload.ModeDirect
}

// DefaultModeDetector recognizes managed database endpoints by pgload.ManagedHostMarker.
var DefaultModeDetector ModeDetector = HostMarkerDetector{Marker: pgload.ManagedHostMarker}

// ResolveMode returns the target's explicit mode, or the detected one for ModeAuto.
func ResolveMode(target *pgload.Target, detector ModeDetector) pgload.ConnectivityMode {
	if target.Mode != pgload.ModeAuto {
		return target.Mode
	}
	if detector == nil {
		detector = DefaultModeDetector
	}
	return detector.Detect(target)
}

// Plan is the resolved load strategy for one target: *DirectPlan or *RemotePipePlan.
type Plan interface {
	Mode() pgload.ConnectivityMode

	// Describe lists what will be submitted, one entry per server round trip.
	Describe() []string

	// FileCount is the number of event files the plan loads.
	FileCount() int
}

// DirectPlan loads every file in one transaction; the server reads the files itself.
type DirectPlan struct {
	Statements []string
}

func (p *DirectPlan) Mode() pgload.ConnectivityMode { return pgload.ModeDirect }
func (p *DirectPlan) FileCount() int                { return len(p.Statements) }

func (p *DirectPlan) Describe() []string {
	if len(p.Statements) == 0 {
		return nil
	}
	return []string{statement.Transaction(p.Statements)}
}

// RemotePipePlan streams each file through the client with the same statement.
// Each file commits on its own.
type RemotePipePlan struct {
	Statement string
	Files     []string
}

func (p *RemotePipePlan) Mode() pgload.ConnectivityMode { return pgload.ModeRemotePipe }
func (p *RemotePipePlan) FileCount() int                { return len(p.Files) }

func (p *RemotePipePlan) Describe() []string {
	lines := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		lines = append(lines, fmt.Sprintf("%s  < %s", p.Statement, f))
	}
	return lines
}

// PlanLoad builds the plan for loading files into target.
func PlanLoad(target *pgload.Target, files []string, builder *statement.Builder, detector ModeDetector) (Plan, error) {
	switch mode := ResolveMode(target, detector); mode {
	case pgload.ModeDirect:
		stmts, err := builder.CopyFromFiles(target.Table, files)
		if err != nil {
			return nil, err
		}
		return &DirectPlan{Statements: stmts}, nil

	case pgload.ModeRemotePipe:
		if target.AuthMethod == pgload.AuthMethodGoogleIAM {
			return nil, fmt.Errorf("remote pipe mode cannot authenticate with %v: %w", target.AuthMethod, pgload.ErrUnsupportedAuthMethod)
		}
		stmt, err := builder.CopyFromStdin(target.Table)
		if err != nil {
			return nil, err
		}
		return &RemotePipePlan{Statement: stmt, Files: files}, nil

	default:
		return nil, fmt.Errorf("unknown mode %v: %w", mode, pgload.ErrInvalidConfig)
	}
}
