package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luxsuv/booking-web/internal/booking"
	"github.com/luxsuv/booking-web/internal/upstream"
	"github.com/luxsuv/booking-web/pkg/logger"
)

// RiderBookings handles GET /rider/bookings
func (h *Handlers) RiderBookings(c *gin.Context) {
	params := listParams(c)

	items, err := h.bound(c).ListRiderBookings(c.Request.Context(), params)
	if err != nil {
		h.failAndRedirect(c, err, "/login")
		return
	}

	firstPage := params.Offset == 0 && params.Status == ""
	items = h.mergeRecent(c, items, firstPage)

	h.render(c, http.StatusOK, "bookings_list.html", listView("/rider/bookings", items, params))
}

// ShowRiderBookingForm handles GET /rider/bookings/new
func (h *Handlers) ShowRiderBookingForm(c *gin.Context) {
	h.render(c, http.StatusOK, "booking_new.html", gin.H{
		"Action": "/rider/bookings",
	})
}

// CreateRiderBooking handles POST /rider/bookings
func (h *Handlers) CreateRiderBooking(c *gin.Context) {
	var form BookingForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "booking_new.html", gin.H{
			"Action": "/rider/bookings",
			"Error":  "Please check the booking details: pickup, dropoff, 1-8 passengers, up to 10 luggage pieces and a ride type are required.",
			"Form":   form,
		})
		return
	}

	req, err := form.request()
	if err != nil {
		h.render(c, http.StatusBadRequest, "booking_new.html", gin.H{
			"Action": "/rider/bookings",
			"Error":  viewMessage(err),
			"Form":   form,
		})
		return
	}

	bk, err := h.bound(c).CreateRiderBooking(c.Request.Context(), req)
	if err != nil {
		h.failAndRedirect(c, err, "/rider/bookings/new")
		return
	}

	h.prependRecent(c, bk)
	if h.Monitor != nil {
		h.Monitor.RecordBookingCreated("rider", string(req.RideType))
	}
	h.Logger.Info("Rider booking created", logger.Int64("booking_id", bk.ID))

	setFlash(c, flashSuccess, "Booking created successfully!")
	c.Redirect(http.StatusFound, "/rider/bookings")
}

// RiderBookingDetail handles GET /rider/bookings/:id
func (h *Handlers) RiderBookingDetail(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.failAndRedirect(c, err, "/rider/bookings")
		return
	}

	bk, err := h.bound(c).GetRiderBooking(c.Request.Context(), id)
	if err != nil {
		h.failAndRedirect(c, err, "/rider/bookings")
		return
	}

	h.render(c, http.StatusOK, "booking_detail.html", detailView(bk, fmt.Sprintf("/rider/bookings/%d", id), ""))
}

// UpdateRiderBooking handles POST /rider/bookings/:id
func (h *Handlers) UpdateRiderBooking(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.failAndRedirect(c, err, "/rider/bookings")
		return
	}
	detail := fmt.Sprintf("/rider/bookings/%d", id)

	var form BookingForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, flashError, "Please check your booking details")
		c.Redirect(http.StatusFound, detail)
		return
	}
	upd, err := form.update()
	if err != nil {
		setFlash(c, flashError, viewMessage(err))
		c.Redirect(http.StatusFound, detail)
		return
	}

	ctx := c.Request.Context()
	bound := h.bound(c)

	orig, err := bound.GetRiderBooking(ctx, id)
	if err != nil {
		h.failAndRedirect(c, err, "/rider/bookings")
		return
	}

	changes := booking.Diff(orig, upd)
	if len(changes) == 0 {
		c.Redirect(http.StatusFound, detail)
		return
	}

	if _, err := bound.UpdateRiderBooking(ctx, id, changes); err != nil {
		h.failAndRedirect(c, err, detail)
		return
	}

	setFlash(c, flashSuccess, "Booking updated successfully!")
	c.Redirect(http.StatusFound, detail)
}

// CancelRiderBooking handles POST /rider/bookings/:id/cancel
func (h *Handlers) CancelRiderBooking(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.failAndRedirect(c, err, "/rider/bookings")
		return
	}

	if err := h.bound(c).CancelRiderBooking(c.Request.Context(), id); err != nil {
		h.failAndRedirect(c, err, "/rider/bookings")
		return
	}

	if h.Monitor != nil {
		h.Monitor.RecordBookingCanceled("rider")
	}
	setFlash(c, flashSuccess, "Booking canceled.")
	c.Redirect(http.StatusFound, "/rider/bookings")
}

// ShowGuestBookingForm handles GET /guest/book. Open to everyone: the
// created booking is managed through the returned manage token.
func (h *Handlers) ShowGuestBookingForm(c *gin.Context) {
	h.render(c, http.StatusOK, "guest_booking_new.html", nil)
}

// CreateGuestBooking handles POST /guest/book
func (h *Handlers) CreateGuestBooking(c *gin.Context) {
	var form GuestBookingForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "guest_booking_new.html", gin.H{
			"Error": "Please check the booking details: name, a valid email, phone and the trip fields are required.",
			"Form":  form,
		})
		return
	}

	req, err := form.request()
	if err != nil {
		h.render(c, http.StatusBadRequest, "guest_booking_new.html", gin.H{
			"Error": viewMessage(err),
			"Form":  form,
		})
		return
	}

	resp, err := h.bound(c).CreateGuestBooking(c.Request.Context(), upstream.GuestBookingRequest{
		RiderName:      form.RiderName,
		RiderEmail:     form.RiderEmail,
		RiderPhone:     form.RiderPhone,
		BookingRequest: req,
	})
	if err != nil {
		h.render(c, http.StatusBadRequest, "guest_booking_new.html", gin.H{
			"Error": viewMessage(err),
			"Form":  form,
		})
		return
	}

	if h.Monitor != nil {
		h.Monitor.RecordBookingCreated("guest", string(req.RideType))
	}
	h.Logger.Info("Guest booking created", logger.Int64("booking_id", resp.ID))

	setFlash(c, flashSuccess, "Booking created! Keep the manage link to edit or cancel it.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/guest/bookings/%d?manage_token=%s", resp.ID, resp.ManageToken))
}

// GuestBookings handles GET /guest/bookings
func (h *Handlers) GuestBookings(c *gin.Context) {
	params := listParams(c)

	items, err := h.bound(c).ListGuestBookings(c.Request.Context(), params)
	if err != nil {
		h.failAndRedirect(c, err, "/guest/access")
		return
	}

	h.render(c, http.StatusOK, "bookings_list.html", listView("/guest/bookings", items, params))
}

// GuestBookingDetail handles GET /guest/bookings/:id. With a manage_token
// query parameter the page works without any session.
func (h *Handlers) GuestBookingDetail(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.failAndRedirect(c, err, "/guest/bookings")
		return
	}
	manageToken := c.Query("manage_token")

	bk, err := h.bound(c).GetGuestBooking(c.Request.Context(), id, manageToken)
	if err != nil {
		h.failAndRedirect(c, err, "/guest/access")
		return
	}

	h.render(c, http.StatusOK, "booking_detail.html", detailView(bk, fmt.Sprintf("/guest/bookings/%d", id), manageToken))
}

// UpdateGuestBooking handles POST /guest/bookings/:id
func (h *Handlers) UpdateGuestBooking(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.failAndRedirect(c, err, "/guest/bookings")
		return
	}
	manageToken := manageTokenFrom(c)
	detail := guestDetailPath(id, manageToken)

	var form BookingForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, flashError, "Please check your booking details")
		c.Redirect(http.StatusFound, detail)
		return
	}
	upd, err := form.update()
	if err != nil {
		setFlash(c, flashError, viewMessage(err))
		c.Redirect(http.StatusFound, detail)
		return
	}

	ctx := c.Request.Context()
	bound := h.bound(c)

	orig, err := bound.GetGuestBooking(ctx, id, manageToken)
	if err != nil {
		h.failAndRedirect(c, err, "/guest/access")
		return
	}

	changes := booking.Diff(orig, upd)
	if len(changes) == 0 {
		c.Redirect(http.StatusFound, detail)
		return
	}

	if _, err := bound.UpdateGuestBooking(ctx, id, manageToken, changes); err != nil {
		h.failAndRedirect(c, err, detail)
		return
	}

	setFlash(c, flashSuccess, "Booking updated successfully!")
	c.Redirect(http.StatusFound, detail)
}

// CancelGuestBooking handles POST /guest/bookings/:id/cancel
func (h *Handlers) CancelGuestBooking(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.failAndRedirect(c, err, "/guest/bookings")
		return
	}
	manageToken := manageTokenFrom(c)

	if err := h.bound(c).CancelGuestBooking(c.Request.Context(), id, manageToken); err != nil {
		h.failAndRedirect(c, err, guestDetailPath(id, manageToken))
		return
	}

	if h.Monitor != nil {
		h.Monitor.RecordBookingCanceled("guest")
	}
	setFlash(c, flashSuccess, "Booking canceled.")
	c.Redirect(http.StatusFound, guestDetailPath(id, manageToken))
}

// manageTokenFrom reads the manage token from the form body, falling back
// to the query string for links.
func manageTokenFrom(c *gin.Context) string {
	if token := c.PostForm("manage_token"); token != "" {
		return token
	}
	return c.Query("manage_token")
}

func guestDetailPath(id int64, manageToken string) string {
	if manageToken == "" {
		return fmt.Sprintf("/guest/bookings/%d", id)
	}
	return fmt.Sprintf("/guest/bookings/%d?manage_token=%s", id, manageToken)
}

// listView assembles the data for the shared bookings list template.
func listView(base string, items []booking.Booking, params upstream.ListParams) gin.H {
	data := gin.H{
		"Base":   base,
		"Items":  items,
		"Limit":  params.Limit,
		"Offset": params.Offset,
		"Status": string(params.Status),
	}
	if params.Offset > 0 {
		prev := params.Offset - params.Limit
		if prev < 0 {
			prev = 0
		}
		data["PrevOffset"] = prev
		data["HasPrev"] = true
	}
	if len(items) >= params.Limit {
		data["NextOffset"] = params.Offset + params.Limit
		data["HasNext"] = true
	}
	return data
}

// detailView assembles the data for the booking detail template.
func detailView(bk *booking.Booking, action, manageToken string) gin.H {
	return gin.H{
		"Booking":     bk,
		"Action":      action,
		"ManageToken": manageToken,
		"CanModify":   bk.CanModify(),
		"Scheduled":   bk.ScheduledAt.Local().Format(datetimeLocal),
	}
}
