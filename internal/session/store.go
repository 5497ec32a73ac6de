package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/luxsuv/booking-web/internal/booking"
)

type envelope struct {
	Version int     `json:"version"`
	State   Session `json:"state"`
}

// Store holds the credential state for one browser session and keeps it in
// sync with durable storage. Every mutation persists the full session
// before subscribers are notified. The store itself never talks to the
// booking backend.
type Store struct {
	sid     string
	persist Persister

	mu    sync.Mutex
	state Session
	subs  []func(Session)
}

// NewStore creates a store for the given session ID. Call Hydrate before
// first use to pick up persisted state.
func NewStore(sid string, persist Persister) *Store {
	return &Store{sid: sid, persist: persist}
}

// SID returns the browser session ID this store is bound to.
func (s *Store) SID() string {
	return s.sid
}

// Hydrate loads persisted state. A missing blob yields an empty session.
// A blob with an older schema version, or one that does not parse, is
// discarded entirely and the empty state is written back.
func (s *Store) Hydrate(ctx context.Context) error {
	blob, err := s.persist.Load(ctx, s.sid)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil || env.Version < SchemaVersion {
		s.mu.Lock()
		s.state = Session{}
		s.mu.Unlock()
		return s.persist.Delete(ctx, s.sid)
	}

	s.mu.Lock()
	s.state = env.State
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every successful mutation. The
// callback receives the post-mutation state and runs synchronously on the
// mutating goroutine.
func (s *Store) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// SetRiderAuth stores the rider credential and clears any guest credential.
func (s *Store) SetRiderAuth(ctx context.Context, token string, user booking.User) error {
	return s.mutate(ctx, func(st *Session) bool {
		st.Rider = &RiderAuth{Token: token, User: user}
		st.Guest = nil
		return true
	})
}

// SetGuestAuth stores the guest credential and clears any rider credential.
func (s *Store) SetGuestAuth(ctx context.Context, token, email string) error {
	return s.mutate(ctx, func(st *Session) bool {
		st.Guest = &GuestAuth{Token: token, Email: email}
		st.Rider = nil
		return true
	})
}

// ClearRiderAuth clears the rider slot without touching the guest slot.
func (s *Store) ClearRiderAuth(ctx context.Context) error {
	return s.mutate(ctx, func(st *Session) bool {
		if st.Rider == nil {
			return false
		}
		st.Rider = nil
		return true
	})
}

// ClearGuestAuth clears the guest slot without touching the rider slot.
func (s *Store) ClearGuestAuth(ctx context.Context) error {
	return s.mutate(ctx, func(st *Session) bool {
		if st.Guest == nil {
			return false
		}
		st.Guest = nil
		return true
	})
}

// ClearAll empties both slots. Clearing an already-empty session is a no-op.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.mutate(ctx, func(st *Session) bool {
		if st.Empty() {
			return false
		}
		st.Rider = nil
		st.Guest = nil
		return true
	})
}

// mutate applies fn under the lock, persists the result, then notifies
// subscribers. fn returns false to signal a no-op, which skips both the
// write and the notification.
func (s *Store) mutate(ctx context.Context, fn func(*Session) bool) error {
	s.mu.Lock()
	next := s.state
	if !fn(&next) {
		s.mu.Unlock()
		return nil
	}

	blob, err := json.Marshal(envelope{Version: SchemaVersion, State: next})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.persist.Save(ctx, s.sid, blob); err != nil {
		s.mu.Unlock()
		return err
	}

	s.state = next
	subs := make([]func(Session), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return nil
}
