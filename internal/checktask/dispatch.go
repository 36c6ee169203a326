package checktask

import (
	"sync"

	"github.com/google/uuid"
)

// Queue is a caller-owned collection of deferred tasks, one per verifying
// transaction. Multiple queues may be drained concurrently by worker
// threads; tasks within a single queue are independent and may run in any
// order (spec §5). Dropping a Queue without draining it destroys its
// remaining tasks without running them — cooperative cancellation is
// implicit in Go's garbage collector, nothing extra to implement.
type Queue struct {
	// BatchID lets a caller correlate a drained queue's results back to
	// the transaction that emitted it, the way the teacher's websocket
	// hub correlates CoinJoin alerts back to a txid.
	BatchID uuid.UUID

	mu    sync.Mutex
	tasks []Task
}

// NewQueue allocates an empty, uniquely-identified queue.
func NewQueue() *Queue {
	return &Queue{BatchID: uuid.New()}
}

// Push appends a task to the queue. Safe for concurrent callers emitting
// from multiple verifier invocations sharing one queue.
func (q *Queue) Push(t Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

// Len reports the number of queued, not-yet-run tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs every queued task sequentially, in the order they were pushed,
// and returns the first error encountered (nil if all passed). Ordering is
// not a consensus guarantee (spec §5 — "ordering... is not observable").
// Every task runs even after one has failed; Queue has no fail-fast drain.
func (q *Queue) Drain() error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	var first error
	for _, t := range tasks {
		if err := t.Run(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// DrainConcurrent runs every queued task on its own goroutine and returns
// the first error encountered, if any. Intended for the "multiple queues...
// drained in parallel by worker threads" deployment shape of spec §5 scaled
// down to a single queue's tasks.
func (q *Queue) DrainConcurrent() error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			errs[i] = t.Run()
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Dispatch is the sole place the inline-vs-deferred policy is decided (spec
// §4.G). If queue is non-nil, task ownership transfers to it and Dispatch
// returns nil immediately. Otherwise task.Run() executes now and its result
// is returned directly.
func Dispatch(queue *Queue, task Task) error {
	if queue != nil {
		queue.Push(task)
		return nil
	}
	return task.Run()
}
