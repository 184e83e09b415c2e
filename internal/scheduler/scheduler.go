// Package scheduler runs queued tasks one after another on a single
// background goroutine, preserving submission order.
package scheduler

import "sync"

// Scheduler owns one background goroutine, started lazily on the first
// Schedule call. Tasks run in FIFO order and never overlap. All methods
// are safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	cv      *sync.Cond
	queue   []func()
	started bool
	closed  bool
	done    chan struct{}
}

// New returns a scheduler with no goroutine running yet.
func New() *Scheduler {
	s := &Scheduler{done: make(chan struct{})}
	s.cv = sync.NewCond(&s.mu)
	return s
}

// Schedule enqueues task for execution on the background goroutine and
// returns without waiting for it. Calling Schedule after Close has begun
// is a caller bug and panics.
func (s *Scheduler) Schedule(task func()) {
	if task == nil {
		panic("scheduler: nil task")
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		panic("scheduler: schedule after close")
	}
	if !s.started {
		s.started = true
		go s.run()
	}
	// The worker only waits while the queue is empty, so a signal is
	// needed just for the transition out of empty.
	if len(s.queue) == 0 {
		s.cv.Signal()
	}
	s.queue = append(s.queue, task)
	s.mu.Unlock()
}

// Close runs every task still queued, then stops the background
// goroutine and returns. Close is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if s.started {
			<-s.done
		}
		return
	}
	s.closed = true
	started := s.started
	s.cv.Signal()
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

func (s *Scheduler) run() {
	defer close(s.done)
	s.mu.Lock()
	for {
		for len(s.queue) == 0 && !s.closed {
			s.cv.Wait()
		}
		if len(s.queue) == 0 {
			break
		}
		task := s.queue[0]
		s.queue = s.queue[1:]

		// Run without the lock so tasks may schedule further work.
		s.mu.Unlock()
		task()
		s.mu.Lock()
	}
	s.mu.Unlock()
}
