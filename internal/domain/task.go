package domain

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Task represents a courier dispatch task. A creator posts the task, an
// executor accepts it exactly once, and both sides then negotiate a video
// stream over the task's signaling channel.
type Task struct {
	ID            int64
	Country       string
	City          string
	Start         Coordinates
	Checkpoints   []Coordinates
	Description   string
	Status        TaskStatus
	StreamChannel string
	CreatedBy     int64
	ExecutorID    *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Creator is filled in by the service layer on read paths.
	Creator *User
}
