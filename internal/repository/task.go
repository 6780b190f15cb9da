package repository

import (
	"context"

	"teleport-backend/internal/domain"
)

// TaskRepository exposes persistence operations for Task aggregates.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	Delete(ctx context.Context, id int64) error

	// BindExecutor atomically assigns an executor and stream channel to a
	// task that has no executor yet, moving it to in_progress. It reports
	// false when another executor already won the binding.
	BindExecutor(ctx context.Context, id, executorID int64, streamChannel string) (bool, error)

	// UpdateStatusIf transitions the task status only when the current
	// status matches from. It reports whether the transition happened.
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.TaskStatus) (bool, error)
}
