package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

var (
	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAlreadyAccepted is returned to accept callers that lost the executor race.
	ErrAlreadyAccepted = errors.New("task already accepted")
	// ErrNotExecutor is returned when a caller other than the bound executor tries to complete a task.
	ErrNotExecutor = errors.New("caller is not the executor of this task")
	// ErrInvalidState is returned when an operation is not valid for the task's current status.
	ErrInvalidState = errors.New("task is not in progress")
	// ErrStreamNotStarted is returned by watch before the task has been accepted.
	ErrStreamNotStarted = errors.New("stream not started yet")
)

// StreamChannel derives the signaling channel identifier for a task. Both
// peers compute it locally from the task ID, so it must stay deterministic.
func StreamChannel(taskID int64) string {
	return fmt.Sprintf("video/%d", taskID)
}

// CreateTaskInput is the well-formed task specification supplied by a creator.
type CreateTaskInput struct {
	Country     string
	City        string
	Start       domain.Coordinates
	Checkpoints []domain.Coordinates
	Description string
}

// TaskService owns the task lifecycle: the pending → in_progress → completed
// state machine, the one-shot executor binding, and stream channel derivation.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput, creatorID int64) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	AcceptTask(ctx context.Context, id, executorID int64) (*domain.Task, error)
	CompleteTask(ctx context.Context, id, callerID int64) (*domain.Task, error)
	WatchTask(ctx context.Context, id int64) (string, error)
}

type taskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) TaskService {
	return &taskService{
		tasks: tasks,
		users: users,
	}
}

func (s *taskService) CreateTask(ctx context.Context, input CreateTaskInput, creatorID int64) (*domain.Task, error) {
	if strings.TrimSpace(input.Country) == "" {
		return nil, errors.New("country is required")
	}
	if strings.TrimSpace(input.City) == "" {
		return nil, errors.New("city is required")
	}

	task := &domain.Task{
		Country:     input.Country,
		City:        input.City,
		Start:       input.Start,
		Checkpoints: input.Checkpoints,
		Description: input.Description,
		Status:      domain.TaskStatusPending,
		CreatedBy:   creatorID,
	}

	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	s.attachCreator(ctx, task)
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		s.attachCreator(ctx, &tasks[i])
	}
	return tasks, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

// AcceptTask binds the executor to the task. The repository performs the
// binding as a compare-and-set, so under concurrent accepts exactly one
// caller wins and the rest observe ErrAlreadyAccepted.
func (s *taskService) AcceptTask(ctx context.Context, id, executorID int64) (*domain.Task, error) {
	if _, err := s.GetTask(ctx, id); err != nil {
		return nil, err
	}

	bound, err := s.tasks.BindExecutor(ctx, id, executorID, StreamChannel(id))
	if err != nil {
		return nil, err
	}
	if !bound {
		return nil, ErrAlreadyAccepted
	}

	return s.GetTask(ctx, id)
}

func (s *taskService) CompleteTask(ctx context.Context, id, callerID int64) (*domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.TaskStatusInProgress {
		return nil, ErrInvalidState
	}
	if task.ExecutorID == nil || *task.ExecutorID != callerID {
		return nil, ErrNotExecutor
	}

	done, err := s.tasks.UpdateStatusIf(ctx, id, domain.TaskStatusInProgress, domain.TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, ErrInvalidState
	}

	return s.GetTask(ctx, id)
}

func (s *taskService) WatchTask(ctx context.Context, id int64) (string, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return "", err
	}
	if task.StreamChannel == "" {
		return "", ErrStreamNotStarted
	}
	return task.StreamChannel, nil
}

// attachCreator fills in the creator summary for read paths. A missing
// creator row is not fatal to the read.
func (s *taskService) attachCreator(ctx context.Context, task *domain.Task) {
	if s.users == nil {
		return
	}
	user, err := s.users.GetByID(ctx, task.CreatedBy)
	if err != nil {
		return
	}
	task.Creator = &domain.User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
