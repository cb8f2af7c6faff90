package authgate

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Coordinator runs work on two kinds of lanes:
//
//   - exclusive lanes, one per key, where submissions run one at a time in
//     the order they were enqueued;
//   - the concurrent lane, where work runs immediately in the caller's
//     goroutine with no ordering guarantees.
//
// Lanes of different keys never wait on each other. An optional global cap
// bounds how many units of work (from either lane) run at once.
type Coordinator struct {
	sem *semaphore.Weighted // nil means unbounded

	mu    sync.Mutex
	lanes map[string]*lane
}

type lane struct {
	queue     []*job
	running   bool // a drain goroutine owns the lane
	executing bool // a job has been dequeued and is running
}

type job struct {
	ctx  context.Context
	run  func(context.Context) (any, error)
	done chan jobResult
}

type jobResult struct {
	val any
	err error
}

// NewCoordinator returns a Coordinator. maxConcurrent <= 0 disables the
// global cap.
func NewCoordinator(maxConcurrent int) *Coordinator {
	c := &Coordinator{lanes: make(map[string]*lane)}
	if maxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return c
}

// Pending returns the number of queued or running exclusive jobs for key.
func (c *Coordinator) Pending(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lanes[key]
	if !ok {
		return 0
	}
	n := len(l.queue)
	if l.executing {
		n++
	}
	return n
}

// Exclusive enqueues work on the lane for key and waits for its result.
//
// If ctx is done before the work finishes, Exclusive returns ctx.Err() but the
// work itself stays queued and runs to completion: other callers may depend on
// its side effects (a login, for example). The work receives a context that
// keeps ctx's values but not its cancellation.
func Exclusive[T any](ctx context.Context, c *Coordinator, key string, work func(context.Context) (T, error)) (T, error) {
	j := &job{
		ctx: context.WithoutCancel(ctx),
		run: func(ctx context.Context) (any, error) {
			return work(ctx)
		},
		done: make(chan jobResult, 1),
	}
	c.enqueue(key, j)

	var zero T
	select {
	case res := <-j.done:
		if res.err != nil {
			return zero, res.err
		}
		val, _ := res.val.(T)
		return val, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Concurrent runs work in the caller's goroutine, subject only to the global
// cap. It is never ordered against exclusive lanes.
func Concurrent[T any](ctx context.Context, c *Coordinator, work func(context.Context) (T, error)) (T, error) {
	var zero T
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return zero, err
		}
		defer c.sem.Release(1)
	}
	return work(ctx)
}

func (c *Coordinator) enqueue(key string, j *job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lanes[key]
	if !ok {
		l = &lane{}
		c.lanes[key] = l
	}
	l.queue = append(l.queue, j)

	if !l.running {
		l.running = true
		go c.drain(key, l)
	}
}

// drain runs the lane's jobs in FIFO order until the queue is empty, then
// removes the lane.
func (c *Coordinator) drain(key string, l *lane) {
	for {
		c.mu.Lock()
		l.executing = false
		if len(l.queue) == 0 {
			l.running = false
			delete(c.lanes, key)
			c.mu.Unlock()
			return
		}
		j := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.executing = true
		c.mu.Unlock()

		j.done <- c.execute(j)
	}
}

func (c *Coordinator) execute(j *job) (res jobResult) {
	defer func() {
		if r := recover(); r != nil {
			res = jobResult{err: fmt.Errorf("authgate: lane work panicked: %v", r)}
		}
	}()

	if c.sem != nil {
		// Dispatched work is not revocable, so wait without a deadline.
		if err := c.sem.Acquire(context.Background(), 1); err != nil {
			return jobResult{err: err}
		}
		defer c.sem.Release(1)
	}
	val, err := j.run(j.ctx)
	return jobResult{val: val, err: err}
}
