package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is one queued notification. The sender is bound at enqueue time, so
// dispatch is resolved by the type system rather than a name lookup.
type Job struct {
	Sender     Sender
	Recipients []string
	Subject    string
	Body       string
}

// Config tunes the dispatcher's worker pool.
type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	Email       Sender
	SMS         Sender
	Logger      *logrus.Logger
}

// Dispatcher executes notification jobs on a bounded worker pool. Delivery
// failures are logged and never propagate to the enqueuing request.
type Dispatcher struct {
	cfg Config

	jobs   chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Dispatcher{
		cfg:  cfg,
		jobs: make(chan Job, cfg.QueueSize),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.cfg.Logger.Infof("notification dispatcher started with %d workers", d.cfg.Workers)
}

// Shutdown stops the workers after draining in-flight jobs.
func (d *Dispatcher) Shutdown() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	d.cfg.Logger.Info("notification dispatcher stopped")
}

// Enqueue adds a job without blocking. When the queue is full the job is
// dropped and logged; notifications are best-effort.
func (d *Dispatcher) Enqueue(job Job) bool {
	if job.Sender == nil || len(job.Recipients) == 0 {
		return false
	}
	select {
	case d.jobs <- job:
		return true
	default:
		d.cfg.Logger.Warn("notification queue full, dropping job")
		return false
	}
}

// EnqueueEmail queues a mail job on the configured email sender.
func (d *Dispatcher) EnqueueEmail(recipients []string, subject, body string) {
	d.Enqueue(Job{
		Sender:     d.cfg.Email,
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
	})
}

// EnqueueSMS queues a text message on the configured SMS sender.
func (d *Dispatcher) EnqueueSMS(recipients []string, body string) {
	d.Enqueue(Job{
		Sender:     d.cfg.SMS,
		Recipients: recipients,
		Body:       body,
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case job := <-d.jobs:
			d.deliver(job)
		}
	}
}

func (d *Dispatcher) deliver(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	if err := job.Sender.Send(ctx, job.Recipients, job.Subject, job.Body); err != nil {
		d.cfg.Logger.Errorf("deliver notification: %v", err)
	}
}
