package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	country TEXT NOT NULL,
	city TEXT NOT NULL,
	start_latitude REAL NOT NULL,
	start_longitude REAL NOT NULL,
	checkpoints TEXT NOT NULL DEFAULT '[]',
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	stream_channel TEXT NOT NULL DEFAULT '',
	created_by INTEGER NOT NULL,
	executor_id INTEGER NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (int64, error) {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	checkpoints, err := json.Marshal(task.Checkpoints)
	if err != nil {
		return 0, fmt.Errorf("marshal checkpoints: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (country, city, start_latitude, start_longitude, checkpoints, description, status, stream_channel, created_by, executor_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Country,
		task.City,
		task.Start.Latitude,
		task.Start.Longitude,
		string(checkpoints),
		task.Description,
		string(task.Status),
		task.StreamChannel,
		task.CreatedBy,
		task.ExecutorID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	task.ID = id
	return id, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, country, city, start_latitude, start_longitude, checkpoints, description, status, stream_channel, created_by, executor_id, created_at, updated_at
FROM tasks
WHERE id=?`,
		id,
	)
	return scanTask(row)
}

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, country, city, start_latitude, start_longitude, checkpoints, description, status, stream_channel, created_by, executor_id, created_at, updated_at
FROM tasks
ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("task %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

// BindExecutor relies on the executor_id IS NULL guard to make the binding a
// compare-and-set: under concurrent accepts only one UPDATE matches a row.
func (r *TaskRepository) BindExecutor(ctx context.Context, id, executorID int64, streamChannel string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE tasks
SET executor_id=?, status=?, stream_channel=?, updated_at=?
WHERE id=? AND executor_id IS NULL`,
		executorID,
		string(domain.TaskStatusInProgress),
		streamChannel,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("bind executor: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bind executor rows affected: %w", err)
	}
	return aff == 1, nil
}

func (r *TaskRepository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.TaskStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE tasks
SET status=?, updated_at=?
WHERE id=? AND status=?`,
		string(to),
		time.Now().UTC(),
		id,
		string(from),
	)
	if err != nil {
		return false, fmt.Errorf("update task status: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("status update rows affected: %w", err)
	}
	return aff == 1, nil
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task        domain.Task
		checkpoints string
		status      string
		executorID  sql.NullInt64
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := scanner.Scan(
		&task.ID,
		&task.Country,
		&task.City,
		&task.Start.Latitude,
		&task.Start.Longitude,
		&checkpoints,
		&task.Description,
		&status,
		&task.StreamChannel,
		&task.CreatedBy,
		&executorID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if err := json.Unmarshal([]byte(checkpoints), &task.Checkpoints); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoints: %w", err)
	}
	task.Status = domain.TaskStatus(status)
	task.CreatedAt = createdAt.Local()
	task.UpdatedAt = updatedAt.Local()
	if executorID.Valid {
		v := executorID.Int64
		task.ExecutorID = &v
	}

	return &task, nil
}
