package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luxsuv/booking-web/internal/web/middleware"
	apperrors "github.com/luxsuv/booking-web/pkg/errors"
	"github.com/luxsuv/booking-web/pkg/logger"
)

// ShowGuestAccess handles GET /guest/access
func (h *Handlers) ShowGuestAccess(c *gin.Context) {
	h.render(c, http.StatusOK, "guest_access.html", gin.H{
		"Email": c.Query("email"),
	})
}

// RequestGuestAccess handles POST /guest/access/request
func (h *Handlers) RequestGuestAccess(c *gin.Context) {
	var form GuestAccessForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "guest_access.html", gin.H{
			"Error": "A valid email address is required.",
		})
		return
	}

	if err := h.bound(c).RequestGuestAccess(c.Request.Context(), form.Email); err != nil {
		h.render(c, http.StatusBadRequest, "guest_access.html", gin.H{
			"Error": viewMessage(err),
			"Email": form.Email,
		})
		return
	}

	h.Logger.Info("Guest access code requested", logger.String("email", form.Email))
	h.render(c, http.StatusOK, "guest_access.html", gin.H{
		"Email":    form.Email,
		"CodeSent": true,
	})
}

// VerifyGuestAccess handles POST /guest/access/verify
func (h *Handlers) VerifyGuestAccess(c *gin.Context) {
	var form GuestVerifyForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "guest_access.html", gin.H{
			"Error":    "Enter the 6-digit code from your email.",
			"Email":    form.Email,
			"CodeSent": true,
		})
		return
	}

	ctx := c.Request.Context()
	resp, err := h.bound(c).VerifyGuestAccess(ctx, form.Email, form.Code)
	if err != nil {
		message := viewMessage(err)
		if apperrors.StatusOf(err) == http.StatusUnauthorized {
			message = apperrors.ErrInvalidCode.Message
		}
		h.render(c, http.StatusUnauthorized, "guest_access.html", gin.H{
			"Error":    message,
			"Email":    form.Email,
			"CodeSent": true,
		})
		return
	}

	store := middleware.StoreFrom(c)
	if err := store.SetGuestAuth(ctx, resp.SessionToken, form.Email); err != nil {
		h.Logger.Error("Failed to persist guest session", logger.Err(err))
		h.render(c, http.StatusInternalServerError, "guest_access.html", gin.H{
			"Error": "Could not start your session. Please try again.",
			"Email": form.Email,
		})
		return
	}

	h.Logger.Info("Guest access granted", logger.String("email", form.Email))
	setFlash(c, flashSuccess, "Access granted!")
	c.Redirect(http.StatusFound, "/guest/bookings")
}
