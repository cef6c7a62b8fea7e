// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/ripple/internal/core/domain"
)

// Executor defines the interface for running compile tasks.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the task's compile command. The command is expected to
	// write the task's dependency report as a side effect.
	//
	// It returns an error if the task execution fails.
	Execute(ctx context.Context, task *domain.Task) error
}
