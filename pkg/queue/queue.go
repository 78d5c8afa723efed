package queue

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrQueueFull = errors.New("too many pending messages")
	ErrStopped   = errors.New("queue is stopped")
)

// Item is the backlog of one user.
type Item struct {
	Tasks []func()
}

// MessageQueue runs tasks of one user strictly in the order they were added,
// one at a time. Tasks of different users run concurrently.
type MessageQueue struct {
	mu      *sync.Mutex
	pending map[int64]*Item
	wg      sync.WaitGroup
	stopped bool

	maxPerUser int // how many tasks may wait behind the running one
}

type Config struct {
	MaxPerUser int
}

func NewMessageQueue(cfg Config) *MessageQueue {
	if cfg.MaxPerUser == 0 {
		cfg.MaxPerUser = 32
	}
	return &MessageQueue{
		mu:         &sync.Mutex{},
		pending:    make(map[int64]*Item),
		maxPerUser: cfg.MaxPerUser,
	}
}

func (q *MessageQueue) Add(userID int64, task func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrStopped
	}
	item, ok := q.pending[userID]
	if ok {
		if len(item.Tasks) >= q.maxPerUser {
			return ErrQueueFull
		}
		// a worker is already draining this user
		item.Tasks = append(item.Tasks, task)
		return nil
	}
	q.pending[userID] = &Item{Tasks: []func(){task}}
	q.wg.Add(1)
	go q.drain(userID)
	return nil
}

// Stop rejects new tasks and waits for the queued ones to finish.
func (q *MessageQueue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *MessageQueue) drain(userID int64) {
	defer q.wg.Done()
	for {
		task, ok := q.next(userID)
		if !ok {
			return
		}
		task()
	}
}

func (q *MessageQueue) next(userID int64) (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item := q.pending[userID]
	if item == nil || len(item.Tasks) == 0 {
		delete(q.pending, userID)
		return nil, false
	}
	task := item.Tasks[0]
	item.Tasks = item.Tasks[1:]
	return task, true
}
