package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recordingSender struct {
	mu        sync.Mutex
	calls     [][]string
	fail      bool
	remaining int
	done      chan struct{}
}

func newRecordingSender(expected int) *recordingSender {
	s := &recordingSender{done: make(chan struct{})}
	if expected == 0 {
		close(s.done)
	}
	s.remaining = expected
	return s
}

func (s *recordingSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	s.mu.Lock()
	s.calls = append(s.calls, recipients)
	s.remaining--
	if s.remaining == 0 {
		close(s.done)
	}
	s.mu.Unlock()
	if s.fail {
		return errors.New("delivery failed")
	}
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestDispatcher_DeliversQueuedJobs(t *testing.T) {
	sender := newRecordingSender(2)
	d := NewDispatcher(Config{
		Workers: 2,
		Email:   sender,
		Logger:  quietLogger(),
	})
	d.Start(context.Background())
	defer d.Shutdown()

	d.EnqueueEmail([]string{"a@example.com"}, "hi", "body")
	d.EnqueueEmail([]string{"b@example.com"}, "hi", "body")

	select {
	case <-sender.done:
	case <-time.After(time.Second):
		t.Fatalf("jobs not delivered in time")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.calls) != 2 {
		t.Fatalf("delivered %d jobs, want 2", len(sender.calls))
	}
}

func TestDispatcher_FailedDeliveryDoesNotStopWorkers(t *testing.T) {
	sender := newRecordingSender(2)
	sender.fail = true
	d := NewDispatcher(Config{
		Workers: 1,
		Email:   sender,
		Logger:  quietLogger(),
	})
	d.Start(context.Background())
	defer d.Shutdown()

	d.EnqueueEmail([]string{"a@example.com"}, "hi", "body")
	d.EnqueueEmail([]string{"b@example.com"}, "hi", "body")

	select {
	case <-sender.done:
	case <-time.After(time.Second):
		t.Fatalf("worker stalled after a failed delivery")
	}
}

func TestDispatcher_EnqueueRejectsEmptyJobs(t *testing.T) {
	d := NewDispatcher(Config{Logger: quietLogger()})

	if d.Enqueue(Job{Recipients: []string{"a@example.com"}}) {
		t.Fatalf("job without sender should be rejected")
	}
	if d.Enqueue(Job{Sender: newRecordingSender(0)}) {
		t.Fatalf("job without recipients should be rejected")
	}
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	sender := newRecordingSender(0)
	d := NewDispatcher(Config{
		Workers:   1,
		QueueSize: 1,
		Email:     sender,
		Logger:    quietLogger(),
	})
	// Not started: nothing drains the queue, so the second enqueue overflows.
	first := d.Enqueue(Job{Sender: sender, Recipients: []string{"a@example.com"}})
	second := d.Enqueue(Job{Sender: sender, Recipients: []string{"b@example.com"}})

	if !first {
		t.Fatalf("first enqueue should fit the queue")
	}
	if second {
		t.Fatalf("second enqueue should be dropped, queue is full")
	}
}
