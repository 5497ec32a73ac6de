package booking

import "time"

// Update carries edited booking fields from a form. Zero values mean
// "left blank" for strings; numeric fields are always submitted.
type Update struct {
	Pickup      string
	Dropoff     string
	ScheduledAt time.Time
	Notes       string
	Passengers  int
	Luggages    int
	RideType    RideType
}

// Diff builds a partial PATCH payload containing only the fields of upd
// that differ from orig. Timestamps are compared at second precision and
// sent as RFC3339 UTC, matching the backend wire format.
func Diff(orig *Booking, upd Update) map[string]interface{} {
	changes := make(map[string]interface{})

	if upd.Pickup != "" && upd.Pickup != orig.Pickup {
		changes["pickup"] = upd.Pickup
	}
	if upd.Dropoff != "" && upd.Dropoff != orig.Dropoff {
		changes["dropoff"] = upd.Dropoff
	}
	if !upd.ScheduledAt.IsZero() && !upd.ScheduledAt.Truncate(time.Second).Equal(orig.ScheduledAt.Truncate(time.Second)) {
		changes["scheduled_at"] = upd.ScheduledAt.UTC().Format(time.RFC3339)
	}
	if upd.Notes != orig.Notes {
		changes["notes"] = upd.Notes
	}
	if upd.Passengers != 0 && upd.Passengers != orig.Passengers {
		changes["passengers"] = upd.Passengers
	}
	if upd.Luggages != orig.Luggages {
		changes["luggages"] = upd.Luggages
	}
	if upd.RideType != "" && upd.RideType != orig.RideType {
		changes["ride_type"] = string(upd.RideType)
	}

	return changes
}
