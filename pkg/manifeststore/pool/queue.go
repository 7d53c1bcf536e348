package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/panjf2000/ants/v2"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

// DefaultWorkers is used when the configured worker count is not positive.
const DefaultWorkers = 16

// Queue runs blocking storage I/O on a bounded set of goroutines so a slow
// disk only holds up the requests waiting on it.
type Queue struct {
	pool   *ants.Pool
	name   string
	logger logr.Logger
}

func NewQueue(workers int, name string, logger logr.Logger) (*Queue, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p, err := ants.NewPool(workers, ants.WithOptions(ants.Options{
		ExpiryDuration:   1 * time.Minute, // worker lifespan when unused
		PreAlloc:         false,
		MaxBlockingTasks: 0, // no limit on tasks we can submit
		Nonblocking:      false,
		PanicHandler: func(p interface{}) {
			logger.Error(fmt.Errorf("%v", p), "panic in worker queue", "queue", name)
		},
		Logger: antsLogger{logger: logger},
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker queue %s: %w", name, err)
	}
	return &Queue{pool: p, name: name, logger: logger}, nil
}

// Do runs fn on the queue and waits for it. ctx is only checked before
// submitting; once fn is queued Do returns its result even if ctx ends
// in the meantime.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	task := func() {
		defer func() {
			if p := recover(); p != nil {
				q.logger.Error(fmt.Errorf("%v", p), "panic in queued task", "queue", q.name)
				done <- fmt.Errorf("%w: panic in %s queue: %v", apperrors.ErrStorage, q.name, p)
			}
		}()
		done <- fn()
	}

	if err := q.pool.Submit(task); err != nil {
		return fmt.Errorf("%w: submit to %s queue: %w", apperrors.ErrStorage, q.name, err)
	}

	return <-done
}

// Running returns the number of busy workers.
func (q *Queue) Running() int {
	return q.pool.Running()
}

// Cap returns the configured worker count.
func (q *Queue) Cap() int {
	return q.pool.Cap()
}

// Release stops accepting work and frees idle workers. Safe to call twice.
func (q *Queue) Release() {
	if !q.pool.IsClosed() {
		q.pool.Release()
	}
}

type antsLogger struct {
	logger logr.Logger
}

func (l antsLogger) Printf(format string, args ...interface{}) {
	l.logger.V(1).Info(fmt.Sprintf(format, args...))
}
