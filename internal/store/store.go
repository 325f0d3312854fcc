// Package store records pipeline run history. The reconciliation state itself
// is rebuilt per run from source files; the store keeps outcomes only.
package store

import (
	"context"

	"github.com/traxovo/attendance-cli/internal/model"
)

// Store defines the run-history persistence interface.
type Store interface {
	CreateRun(ctx context.Context, targetDate string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, stats model.RunStats, artifacts []model.Artifact) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
