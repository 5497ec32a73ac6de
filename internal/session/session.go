package session

import (
	"context"
	"errors"

	"github.com/luxsuv/booking-web/internal/booking"
)

// SchemaVersion is bumped whenever the persisted session shape changes.
// Older blobs are discarded wholesale on load, never migrated field by
// field, since partial legacy shapes are not trusted.
const SchemaVersion = 1

// RiderAuth is the credential slot for an authenticated registered user.
type RiderAuth struct {
	Token string       `json:"token"`
	User  booking.User `json:"user"`
}

// GuestAuth is the credential slot for email-code guest access.
type GuestAuth struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Session holds the two credential slots for one browser. At most one of
// Rider/Guest is non-nil at a time; the Store enforces this.
type Session struct {
	Rider *RiderAuth `json:"rider,omitempty"`
	Guest *GuestAuth `json:"guest,omitempty"`
}

// Empty reports whether both slots are clear.
func (s Session) Empty() bool {
	return s.Rider == nil && s.Guest == nil
}

// ErrNotFound is returned by a Persister when no blob exists for a session ID.
var ErrNotFound = errors.New("session: not found")

// Persister is the durable storage behind a Store. Implementations store
// opaque blobs; versioning and shape belong to the Store.
type Persister interface {
	Save(ctx context.Context, sid string, blob []byte) error
	Load(ctx context.Context, sid string) ([]byte, error)
	Delete(ctx context.Context, sid string) error
}
