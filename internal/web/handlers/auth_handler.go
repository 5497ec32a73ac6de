package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luxsuv/booking-web/internal/upstream"
	"github.com/luxsuv/booking-web/internal/web/middleware"
	apperrors "github.com/luxsuv/booking-web/pkg/errors"
	"github.com/luxsuv/booking-web/pkg/logger"
)

// ShowRegister handles GET /register
func (h *Handlers) ShowRegister(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", nil)
}

// Register handles POST /register
func (h *Handlers) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "register.html", gin.H{
			"Error": "Please fill in all fields: a valid email and a password of at least 6 characters are required.",
			"Form":  form,
		})
		return
	}

	resp, err := h.bound(c).Register(c.Request.Context(), upstream.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
	})
	if err != nil {
		h.render(c, http.StatusBadRequest, "register.html", gin.H{
			"Error": viewMessage(err),
			"Form":  form,
		})
		return
	}

	h.Logger.Info("Rider registered", logger.String("email", form.Email))
	h.render(c, http.StatusOK, "register_done.html", gin.H{
		"Message":      resp.Message,
		"DevVerifyURL": resp.DevVerifyURL,
	})
}

// VerifyEmail handles GET /verify-email?token=
func (h *Handlers) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.render(c, http.StatusBadRequest, "verify_email.html", gin.H{
			"Error": "Verification link is missing its token.",
		})
		return
	}

	resp, err := h.bound(c).VerifyEmail(c.Request.Context(), token)
	if err != nil {
		h.render(c, http.StatusBadRequest, "verify_email.html", gin.H{
			"Error": viewMessage(err),
		})
		return
	}

	h.render(c, http.StatusOK, "verify_email.html", gin.H{
		"Message": resp.Message,
	})
}

// ShowLogin handles GET /login
func (h *Handlers) ShowLogin(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", nil)
}

// Login handles POST /login
func (h *Handlers) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "login.html", gin.H{
			"Error": "Email and password are required.",
			"Form":  form,
		})
		return
	}

	ctx := c.Request.Context()
	resp, err := h.bound(c).Login(ctx, upstream.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		message := viewMessage(err)
		if apperrors.StatusOf(err) == http.StatusUnauthorized {
			message = apperrors.ErrInvalidLogin.Message
		}
		h.render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Error": message,
			"Form":  form,
		})
		return
	}

	store := middleware.StoreFrom(c)
	if err := store.SetRiderAuth(ctx, resp.AccessToken, resp.User); err != nil {
		h.Logger.Error("Failed to persist rider session", logger.Err(err))
		h.render(c, http.StatusInternalServerError, "login.html", gin.H{
			"Error": "Could not start your session. Please try again.",
		})
		return
	}

	h.Logger.Info("Rider logged in", logger.Int64("user_id", resp.User.ID))
	setFlash(c, flashSuccess, "Welcome back!")
	c.Redirect(http.StatusFound, "/rider/bookings")
}

// Logout handles POST /logout for both identities.
func (h *Handlers) Logout(c *gin.Context) {
	store := middleware.StoreFrom(c)
	if err := store.ClearAll(c.Request.Context()); err != nil {
		h.Logger.Error("Failed to clear session on logout", logger.Err(err))
	}
	c.Redirect(http.StatusFound, "/")
}
