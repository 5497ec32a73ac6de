package booking

import "time"

// Status represents the backend-owned booking lifecycle. The client treats
// it as opaque except to decide whether edit/cancel actions are offered.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusAssigned  Status = "assigned"
	StatusOnTrip    Status = "on_trip"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Terminal reports whether the booking can no longer change.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAssigned, StatusOnTrip, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// RideType distinguishes per-ride and hourly pricing.
type RideType string

const (
	RidePerRide RideType = "per_ride"
	RideHourly  RideType = "hourly"
)

// Booking mirrors the backend booking resource.
type Booking struct {
	ID          int64     `json:"id"`
	Status      Status    `json:"status"`
	RiderName   string    `json:"rider_name,omitempty"`
	RiderEmail  string    `json:"rider_email,omitempty"`
	RiderPhone  string    `json:"rider_phone,omitempty"`
	Pickup      string    `json:"pickup"`
	Dropoff     string    `json:"dropoff"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       string    `json:"notes,omitempty"`
	Passengers  int       `json:"passengers"`
	Luggages    int       `json:"luggages"`
	RideType    RideType  `json:"ride_type"`
	DriverID    *int64    `json:"driver_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ManageToken string    `json:"manage_token,omitempty"`
}

// CanModify reports whether edit and cancel actions should be offered.
// The backend enforces the state machine; this only drives the UI.
func (b *Booking) CanModify() bool {
	return !b.Status.Terminal()
}

// User is the server-issued account record for an authenticated rider.
// Immutable from the client's perspective except by re-login.
type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}
