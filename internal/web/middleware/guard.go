package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Entry points the guards redirect to when the required identity is absent.
const (
	SignInPath      = "/login"
	GuestAccessPath = "/guest/access"
)

// RequireRider gates views that need an authenticated rider. The check is
// a pure function of current session state evaluated on every request, so
// a 401-triggered clear redirects on the next render with no timing games:
// the request layer never navigates, and the entry points are unguarded.
func RequireRider() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := StoreFrom(c).Snapshot()
		if state.Rider == nil {
			c.Redirect(http.StatusFound, SignInPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireGuest gates views that need a guest session. When allowManageToken
// is set, a manage_token query parameter is accepted in place of a session,
// since the token alone is a complete credential for its booking.
func RequireGuest(allowManageToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := StoreFrom(c).Snapshot()
		if state.Guest != nil {
			c.Next()
			return
		}
		if allowManageToken && manageToken(c) != "" {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, GuestAccessPath)
		c.Abort()
	}
}

// manageToken reads the token from the query string, or from the form
// body for posted edit/cancel actions.
func manageToken(c *gin.Context) string {
	if token := c.Query("manage_token"); token != "" {
		return token
	}
	if c.Request.Method == http.MethodPost {
		return c.PostForm("manage_token")
	}
	return ""
}
