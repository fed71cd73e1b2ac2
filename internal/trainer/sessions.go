package trainer

import (
	"sync"

	"github.com/verte-zerg/preflop/internal/model"
)

// SessionStore holds the unanswered question queue of each live session.
type SessionStore struct {
	mu     sync.Mutex
	queues map[string][]model.TrainingQuestion
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{queues: map[string][]model.TrainingQuestion{}}
}

// Create stores questions under id, replacing any previous queue.
func (s *SessionStore) Create(id string, questions []model.TrainingQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[id] = questions
}

// Get returns the queue for id.
func (s *SessionStore) Get(id string) ([]model.TrainingQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[id]
	return q, ok
}

// Remove drops the queue for id. Unknown ids are ignored.
func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, id)
}

// Len returns the number of live queues.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues)
}
