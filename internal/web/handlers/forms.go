package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luxsuv/booking-web/internal/booking"
	"github.com/luxsuv/booking-web/internal/upstream"
	apperrors "github.com/luxsuv/booking-web/pkg/errors"
)

// datetimeLocal is the format submitted by <input type="datetime-local">.
const datetimeLocal = "2006-01-02T15:04"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RegisterForm mirrors the backend registration payload.
type RegisterForm struct {
	Name     string `form:"name" binding:"required,max=100"`
	Email    string `form:"email" binding:"required,email"`
	Phone    string `form:"phone" binding:"required"`
	Password string `form:"password" binding:"required,min=6"`
}

// LoginForm is the rider sign-in form.
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// GuestAccessForm requests an emailed access code.
type GuestAccessForm struct {
	Email string `form:"email" binding:"required,email"`
}

// GuestVerifyForm exchanges the emailed code for a guest session.
type GuestVerifyForm struct {
	Email string `form:"email" binding:"required,email"`
	Code  string `form:"code" binding:"required,len=6,numeric"`
}

// BookingForm carries the trip fields common to rider and guest bookings.
type BookingForm struct {
	Pickup      string `form:"pickup" binding:"required"`
	Dropoff     string `form:"dropoff" binding:"required"`
	ScheduledAt string `form:"scheduled_at" binding:"required"`
	Passengers  int    `form:"passengers" binding:"required,min=1,max=8"`
	Luggages    int    `form:"luggages" binding:"min=0,max=10"`
	RideType    string `form:"ride_type" binding:"required,oneof=per_ride hourly"`
	Notes       string `form:"notes"`
}

// GuestBookingForm adds the contact fields guests must supply.
type GuestBookingForm struct {
	RiderName  string `form:"rider_name" binding:"required,max=100"`
	RiderEmail string `form:"rider_email" binding:"required,email"`
	RiderPhone string `form:"rider_phone" binding:"required"`
	BookingForm
}

// scheduledTime parses the form's local date/time into an absolute
// timestamp and rejects times that are not in the future.
func (f *BookingForm) scheduledTime() (time.Time, error) {
	when, err := time.ParseInLocation(datetimeLocal, f.ScheduledAt, time.Local)
	if err != nil {
		return time.Time{}, apperrors.BadRequest("Invalid date/time", err)
	}
	if !when.After(time.Now()) {
		return time.Time{}, apperrors.BadRequest("Scheduled time must be in the future", nil)
	}
	return when.UTC(), nil
}

// request converts the form to the backend create payload.
func (f *BookingForm) request() (upstream.BookingRequest, error) {
	when, err := f.scheduledTime()
	if err != nil {
		return upstream.BookingRequest{}, err
	}
	return upstream.BookingRequest{
		Pickup:      f.Pickup,
		Dropoff:     f.Dropoff,
		ScheduledAt: when,
		Passengers:  f.Passengers,
		Luggages:    f.Luggages,
		RideType:    booking.RideType(f.RideType),
		Notes:       f.Notes,
	}, nil
}

// update converts the form to a diffable edit.
func (f *BookingForm) update() (booking.Update, error) {
	when, err := f.scheduledTime()
	if err != nil {
		return booking.Update{}, err
	}
	return booking.Update{
		Pickup:      f.Pickup,
		Dropoff:     f.Dropoff,
		ScheduledAt: when,
		Notes:       f.Notes,
		Passengers:  f.Passengers,
		Luggages:    f.Luggages,
		RideType:    booking.RideType(f.RideType),
	}, nil
}

// listParams reads pagination and the optional status filter from the
// query string. Unknown status values are dropped rather than forwarded.
func listParams(c *gin.Context) upstream.ListParams {
	params := upstream.ListParams{Limit: defaultPageSize}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= maxPageSize {
		params.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		params.Offset = offset
	}
	if status := booking.Status(c.Query("status")); status.Valid() {
		params.Status = status
	}
	return params
}

// bookingID parses the :id route parameter.
func bookingID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrBookingNotFound
	}
	return id, nil
}
