package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

// fakeTaskRepo is an in-memory TaskRepository with the same compare-and-set
// semantics the sqlite implementation provides.
type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]*domain.Task)}
}

func (r *fakeTaskRepo) Init(ctx context.Context) error { return nil }

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	cp := *task
	r.tasks[task.ID] = &cp
	return task.ID, nil
}

func (r *fakeTaskRepo) Get(ctx context.Context, id int64) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (r *fakeTaskRepo) List(ctx context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	return out, nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) BindExecutor(ctx context.Context, id, executorID int64, streamChannel string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return false, nil
	}
	if task.ExecutorID != nil {
		return false, nil
	}
	task.ExecutorID = &executorID
	task.Status = domain.TaskStatusInProgress
	task.StreamChannel = streamChannel
	return true, nil
}

func (r *fakeTaskRepo) UpdateStatusIf(ctx context.Context, id int64, from, to domain.TaskStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.Status != from {
		return false, nil
	}
	task.Status = to
	return true, nil
}

func newTestTaskService() (TaskService, *fakeTaskRepo) {
	repo := newFakeTaskRepo()
	return NewTaskService(repo, nil), repo
}

func TestTaskLifecycle_CreateAcceptCompleteWatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService()

	task, err := svc.CreateTask(ctx, CreateTaskInput{
		Country: "USA",
		City:    "New York",
		Start:   domain.Coordinates{Latitude: 40.7128, Longitude: -74.0060},
		Checkpoints: []domain.Coordinates{
			{Latitude: 40.7580, Longitude: -73.9855},
		},
		Description: "pick up the package at Times Square",
	}, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == 0 {
		t.Fatalf("expected task id to be assigned")
	}
	if task.Status != domain.TaskStatusPending {
		t.Fatalf("new task status = %q, want %q", task.Status, domain.TaskStatusPending)
	}

	// Watching before anyone accepted is an error: no channel exists yet.
	if _, err := svc.WatchTask(ctx, task.ID); !errors.Is(err, ErrStreamNotStarted) {
		t.Fatalf("watch before accept: got %v, want ErrStreamNotStarted", err)
	}

	accepted, err := svc.AcceptTask(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("accept task: %v", err)
	}
	if accepted.Status != domain.TaskStatusInProgress {
		t.Fatalf("accepted status = %q, want %q", accepted.Status, domain.TaskStatusInProgress)
	}
	if accepted.ExecutorID == nil || *accepted.ExecutorID != 2 {
		t.Fatalf("executor = %v, want 2", accepted.ExecutorID)
	}
	if accepted.StreamChannel != StreamChannel(task.ID) {
		t.Fatalf("stream channel = %q, want %q", accepted.StreamChannel, StreamChannel(task.ID))
	}

	channel, err := svc.WatchTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("watch after accept: %v", err)
	}
	if channel != accepted.StreamChannel {
		t.Fatalf("watch channel = %q, want %q", channel, accepted.StreamChannel)
	}

	done, err := svc.CompleteTask(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if done.Status != domain.TaskStatusCompleted {
		t.Fatalf("completed status = %q, want %q", done.Status, domain.TaskStatusCompleted)
	}
}

func TestAcceptTask_SecondAcceptLoses(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Country: "USA", City: "New York"}, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := svc.AcceptTask(ctx, task.ID, 2); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.AcceptTask(ctx, task.ID, 3); !errors.Is(err, ErrAlreadyAccepted) {
		t.Fatalf("second accept: got %v, want ErrAlreadyAccepted", err)
	}

	// The losing accept must not have disturbed the original binding.
	got, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.ExecutorID == nil || *got.ExecutorID != 2 {
		t.Fatalf("executor = %v, want 2", got.ExecutorID)
	}
}

func TestAcceptTask_ConcurrentAcceptsSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Country: "USA", City: "New York"}, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(executor int64) {
			defer wg.Done()
			_, err := svc.AcceptTask(ctx, task.ID, executor)
			results <- err
		}(int64(100 + i))
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyAccepted):
			losses++
		default:
			t.Fatalf("unexpected accept error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1 (losses = %d)", wins, losses)
	}
	if losses != attempts-1 {
		t.Fatalf("losses = %d, want %d", losses, attempts-1)
	}
}

func TestCompleteTask_BeforeAcceptIsInvalidState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Country: "USA", City: "New York"}, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := svc.CompleteTask(ctx, task.ID, 1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("complete pending task: got %v, want ErrInvalidState", err)
	}
}

func TestCompleteTask_NonExecutorForbidden(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Country: "USA", City: "New York"}, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := svc.AcceptTask(ctx, task.ID, 2); err != nil {
		t.Fatalf("accept task: %v", err)
	}

	if _, err := svc.CompleteTask(ctx, task.ID, 3); !errors.Is(err, ErrNotExecutor) {
		t.Fatalf("complete by stranger: got %v, want ErrNotExecutor", err)
	}

	// The creator is not the executor either.
	if _, err := svc.CompleteTask(ctx, task.ID, 1); !errors.Is(err, ErrNotExecutor) {
		t.Fatalf("complete by creator: got %v, want ErrNotExecutor", err)
	}
}

func TestCompleteTask_TwiceIsInvalidState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Country: "USA", City: "New York"}, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := svc.AcceptTask(ctx, task.ID, 2); err != nil {
		t.Fatalf("accept task: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, task.ID, 2); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	if _, err := svc.CompleteTask(ctx, task.ID, 2); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second complete: got %v, want ErrInvalidState", err)
	}
}

func TestTaskService_MissingTask(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService()

	if _, err := svc.GetTask(ctx, 42); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("get missing: got %v, want ErrTaskNotFound", err)
	}
	if err := svc.DeleteTask(ctx, 42); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("delete missing: got %v, want ErrTaskNotFound", err)
	}
	if _, err := svc.AcceptTask(ctx, 42, 2); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("accept missing: got %v, want ErrTaskNotFound", err)
	}
	if _, err := svc.CompleteTask(ctx, 42, 2); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("complete missing: got %v, want ErrTaskNotFound", err)
	}
	if _, err := svc.WatchTask(ctx, 42); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("watch missing: got %v, want ErrTaskNotFound", err)
	}
}

func TestCreateTask_RequiresCountryAndCity(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService()

	if _, err := svc.CreateTask(ctx, CreateTaskInput{City: "New York"}, 1); err == nil {
		t.Fatalf("expected error for missing country")
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Country: "USA"}, 1); err == nil {
		t.Fatalf("expected error for missing city")
	}
}

func TestStreamChannel_Deterministic(t *testing.T) {
	if got := StreamChannel(7); got != "video/7" {
		t.Fatalf("StreamChannel(7) = %q, want %q", got, "video/7")
	}
	if StreamChannel(7) != StreamChannel(7) {
		t.Fatalf("stream channel derivation must be stable")
	}
}
