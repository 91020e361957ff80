package store

import (
	"sync"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

// Sessions keeps one dialogue session per customer for the lifetime of
// the process. Work on a session runs under that customer's own lock,
// so replies for one customer are handled strictly in order while
// unrelated customers never wait on each other.
type Sessions struct {
	log *logger.Logger

	mu         sync.Mutex
	locks      map[string]*sync.Mutex
	byCustomer map[string]*types.Session
}

func NewSessions(log *logger.Logger) *Sessions {
	return &Sessions{
		log:        log.With("component", "Sessions"),
		locks:      make(map[string]*sync.Mutex),
		byCustomer: make(map[string]*types.Session),
	}
}

// With runs fn against the customer's session, creating it on first
// contact. fn may mutate the session freely; the per-customer lock is
// held for the duration.
func (s *Sessions) With(customerID string, fn func(*types.Session)) {
	s.mu.Lock()
	lock, ok := s.locks[customerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[customerID] = lock
	}
	sess, ok := s.byCustomer[customerID]
	if !ok {
		sess = types.NewSession(customerID)
		s.byCustomer[customerID] = sess
		s.log.Debug("Session created", "customer_id", customerID)
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	fn(sess)
}

// Peek returns a copy of the customer's session without creating one.
func (s *Sessions) Peek(customerID string) (types.Session, bool) {
	s.mu.Lock()
	lock, ok := s.locks[customerID]
	sess := s.byCustomer[customerID]
	s.mu.Unlock()
	if !ok || sess == nil {
		return types.Session{}, false
	}
	lock.Lock()
	defer lock.Unlock()
	return *sess, true
}

// Count reports how many customers have talked to the bot so far.
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byCustomer)
}
