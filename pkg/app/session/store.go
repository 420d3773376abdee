package session

import (
	"sync"

	"github.com/caretech-io/telesession/pkg/domain"
	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/bus"
)

// Active is one in-memory table entry. Callers must hold its mutex
// while mutating the session or while running the mutation-and-persist
// steps of a command; the table itself stays readable for unrelated
// entries in the meantime.
type Active struct {
	mu      sync.Mutex
	removed bool

	Session *session.Session
	RoomSub bus.Subscription
}

func (a *Active) Lock()   { a.mu.Lock() }
func (a *Active) Unlock() { a.mu.Unlock() }

// Removed reports whether a concurrent stop won the race for this entry
// while the caller was waiting on its lock.
func (a *Active) Removed() bool { return a.removed }

// Store is the orchestrator's in-memory table of active sessions. A
// session id is present iff its session is started but not yet stopped.
// The pending set tracks ids with a start in flight but not yet
// committed, so racing commands for the same id can be rejected instead
// of interleaving.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Active
	pending map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Active),
		pending: make(map[string]struct{}),
	}
}

// BeginStart reserves an id for an in-flight start. It fails when the
// id is already active or another start for it has not committed yet.
func (s *Store) BeginStart(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, active := s.entries[id]; active {
		return domain.NewValidationError("id_session", "session is already active")
	}
	if _, inFlight := s.pending[id]; inFlight {
		return domain.ErrStartInFlight
	}
	s.pending[id] = struct{}{}
	return nil
}

func (s *Store) AbortStart(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// CommitStart publishes the started session into the table and clears
// its pending reservation.
func (s *Store) CommitStart(sess *session.Session, roomSub bus.Subscription) *Active {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, sess.ID)
	entry := &Active{Session: sess, RoomSub: roomSub}
	s.entries[sess.ID] = entry
	return entry
}

func (s *Store) Get(id string) (*Active, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	return entry, ok
}

// Remove drops an entry from the table. The caller must hold the
// entry's lock; the removed flag tells waiters the entry is dead.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[id]; ok {
		entry.removed = true
		delete(s.entries, id)
	}
}

// IDs returns a stable snapshot of the active session ids, so callers
// can iterate while entries are being removed.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// FindByKey locates an active session by its room key. A linear scan is
// fine at the expected session cardinality.
func (s *Store) FindByKey(key string) (*Active, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.Session.Key == key {
			return entry, true
		}
	}
	return nil, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
