package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/luxsuv/booking-web/internal/booking"
	apperrors "github.com/luxsuv/booking-web/pkg/errors"
)

const (
	riderBookingsPath = "/v1/rider/bookings"
	guestBookingsPath = "/v1/guest/bookings"
)

// BookingRequest holds the trip fields shared by rider and guest creates.
// ScheduledAt must already be an absolute timestamp; converting from the
// form's local date/time happens at the view boundary.
type BookingRequest struct {
	Pickup      string           `json:"pickup"`
	Dropoff     string           `json:"dropoff"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	Passengers  int              `json:"passengers"`
	Luggages    int              `json:"luggages"`
	RideType    booking.RideType `json:"ride_type"`
	Notes       string           `json:"notes,omitempty"`
}

// GuestBookingRequest adds the contact fields a guest must supply.
type GuestBookingRequest struct {
	RiderName  string `json:"rider_name"`
	RiderEmail string `json:"rider_email"`
	RiderPhone string `json:"rider_phone"`
	BookingRequest
}

// GuestBookingResponse is the create response for guests; ManageToken is
// the single-booking credential for later management.
type GuestBookingResponse struct {
	ID          int64          `json:"id"`
	ManageToken string         `json:"manage_token"`
	Status      booking.Status `json:"status"`
	ScheduledAt time.Time      `json:"scheduled_at"`
}

// ListParams selects a page of bookings, optionally filtered by status.
type ListParams struct {
	Limit  int
	Offset int
	Status booking.Status
}

func (p ListParams) query() url.Values {
	query := url.Values{}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		query.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Status != "" {
		query.Set("status", string(p.Status))
	}
	return query
}

// CreateRiderBooking books a ride for the authenticated rider.
func (b *Bound) CreateRiderBooking(ctx context.Context, req BookingRequest) (*booking.Booking, error) {
	var out booking.Booking
	if err := b.do(ctx, http.MethodPost, riderBookingsPath, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGuestBooking books a ride without an account and returns the
// manage token for it.
func (b *Bound) CreateGuestBooking(ctx context.Context, req GuestBookingRequest) (*GuestBookingResponse, error) {
	var out GuestBookingResponse
	if err := b.do(ctx, http.MethodPost, guestBookingsPath, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRiderBookings pages through the rider's booking history.
func (b *Bound) ListRiderBookings(ctx context.Context, p ListParams) ([]booking.Booking, error) {
	var out []booking.Booking
	if err := b.do(ctx, http.MethodGet, riderBookingsPath, p.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListGuestBookings pages through bookings tied to the guest session's email.
func (b *Bound) ListGuestBookings(ctx context.Context, p ListParams) ([]booking.Booking, error) {
	var out []booking.Booking
	if err := b.do(ctx, http.MethodGet, guestBookingsPath, p.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBookings picks the endpoint family for the active identity.
func (b *Bound) ListBookings(ctx context.Context, p ListParams) ([]booking.Booking, error) {
	state := b.store.Snapshot()
	switch {
	case state.Rider != nil:
		return b.ListRiderBookings(ctx, p)
	case state.Guest != nil:
		return b.ListGuestBookings(ctx, p)
	default:
		return nil, apperrors.ErrSessionExpired
	}
}

// GetRiderBooking fetches one booking from the rider's history.
func (b *Bound) GetRiderBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	var out booking.Booking
	if err := b.do(ctx, http.MethodGet, riderBookingPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGuestBooking fetches one guest booking. With a manage token the
// request is credentialed by the URL alone; without one the guest session
// token applies.
func (b *Bound) GetGuestBooking(ctx context.Context, id int64, manageToken string) (*booking.Booking, error) {
	var out booking.Booking
	if err := b.do(ctx, http.MethodGet, guestBookingPath(id), manageQuery(manageToken), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGuestBooking PATCHes only the changed fields. Build the payload
// with booking.Diff; an empty diff is the caller's signal to skip the call.
func (b *Bound) UpdateGuestBooking(ctx context.Context, id int64, manageToken string, changes map[string]interface{}) (*booking.Booking, error) {
	var out booking.Booking
	if err := b.do(ctx, http.MethodPatch, guestBookingPath(id), manageQuery(manageToken), changes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRiderBooking PATCHes only the changed fields of a rider booking.
func (b *Bound) UpdateRiderBooking(ctx context.Context, id int64, changes map[string]interface{}) (*booking.Booking, error) {
	var out booking.Booking
	if err := b.do(ctx, http.MethodPatch, riderBookingPath(id), nil, changes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelGuestBooking cancels a guest booking. A 404 means the booking is
// already gone, which counts as a successful cancellation.
func (b *Bound) CancelGuestBooking(ctx context.Context, id int64, manageToken string) error {
	err := b.do(ctx, http.MethodDelete, guestBookingPath(id), manageQuery(manageToken), nil, nil)
	if apperrors.StatusOf(err) == http.StatusNotFound {
		return nil
	}
	return err
}

// CancelRiderBooking cancels a rider booking, idempotently like the guest
// variant.
func (b *Bound) CancelRiderBooking(ctx context.Context, id int64) error {
	err := b.do(ctx, http.MethodDelete, riderBookingPath(id), nil, nil, nil)
	if apperrors.StatusOf(err) == http.StatusNotFound {
		return nil
	}
	return err
}

func riderBookingPath(id int64) string {
	return fmt.Sprintf("%s/%d", riderBookingsPath, id)
}

func guestBookingPath(id int64) string {
	return fmt.Sprintf("%s/%d", guestBookingsPath, id)
}

func manageQuery(manageToken string) url.Values {
	if manageToken == "" {
		return nil
	}
	return url.Values{"manage_token": {manageToken}}
}
