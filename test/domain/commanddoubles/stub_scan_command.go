//go:build integration || unit || test

// Package commanddoubles provides test doubles for command interfaces.
package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/adoscope/internal/domain/commands"
	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// StubScanCommand is a stub implementation of commands.Scan.
type StubScanCommand struct {
	ExecuteCallCount int
	Report           *entities.Report
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.ScanOptions
}

var _ commands.Scan = (*StubScanCommand)(nil)

func (s *StubScanCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.ScanOptions,
) (*entities.Report, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	return s.Report, nil
}
