package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusConfirmed, false},
		{StatusAssigned, false},
		{StatusOnTrip, false},
		{StatusCompleted, true},
		{StatusCanceled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.Terminal())
		})
	}
}

// TestCanModify drives whether edit/cancel actions are rendered at all.
func TestCanModify(t *testing.T) {
	active := &Booking{Status: StatusAssigned}
	assert.True(t, active.CanModify())

	done := &Booking{Status: StatusCompleted}
	assert.False(t, done.CanModify(), "completed bookings must not offer edit or cancel")

	canceled := &Booking{Status: StatusCanceled}
	assert.False(t, canceled.CanModify())
}

func TestDiffOnlyChangedFields(t *testing.T) {
	orig := &Booking{
		Pickup:     "A",
		Dropoff:    "B",
		Passengers: 2,
		Luggages:   1,
		RideType:   RidePerRide,
	}

	changes := Diff(orig, Update{
		Pickup:     "B",
		Dropoff:    "B",
		Passengers: 2,
		Luggages:   1,
		RideType:   RidePerRide,
	})

	assert.Equal(t, map[string]interface{}{"pickup": "B"}, changes)
}

func TestDiffEmptyWhenNothingChanged(t *testing.T) {
	when := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)
	orig := &Booking{
		Pickup:      "A",
		Dropoff:     "B",
		ScheduledAt: when,
		Notes:       "ring bell",
		Passengers:  3,
		Luggages:    2,
		RideType:    RideHourly,
	}

	changes := Diff(orig, Update{
		Pickup:      "A",
		Dropoff:     "B",
		ScheduledAt: when,
		Notes:       "ring bell",
		Passengers:  3,
		Luggages:    2,
		RideType:    RideHourly,
	})

	assert.Empty(t, changes)
}

func TestDiffScheduledAtSentAsRFC3339UTC(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	orig := &Booking{ScheduledAt: time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC), Luggages: 1}
	changes := Diff(orig, Update{
		ScheduledAt: time.Date(2026, 9, 11, 8, 30, 0, 0, loc),
		Luggages:    1,
	})

	require.Contains(t, changes, "scheduled_at")
	assert.Equal(t, "2026-09-11T15:30:00Z", changes["scheduled_at"])
}

func TestDiffClearsNotes(t *testing.T) {
	orig := &Booking{Notes: "old note", Luggages: 1}
	changes := Diff(orig, Update{Notes: "", Luggages: 1})
	assert.Equal(t, map[string]interface{}{"notes": ""}, changes)
}

func TestDiffSecondPrecision(t *testing.T) {
	base := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)
	orig := &Booking{ScheduledAt: base, Luggages: 1}

	// Sub-second drift from parsing round trips is not a change.
	changes := Diff(orig, Update{ScheduledAt: base.Add(300 * time.Millisecond), Luggages: 1})
	assert.NotContains(t, changes, "scheduled_at")
}
