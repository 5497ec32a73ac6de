package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luxsuv/booking-web/internal/session"
	"github.com/luxsuv/booking-web/pkg/logger"
)

const storeKey = "session_store"

// CookieConfig controls the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge int
}

// Session attaches the browser's session store to the request context,
// minting a session cookie on first visit. Every downstream handler and
// guard reads the store from here.
func Session(mgr *session.Manager, cfg CookieConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.Name)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Name, sid, cfg.MaxAge, "/", "", cfg.Secure, true)
		}

		store, err := mgr.Get(c.Request.Context(), sid)
		if err != nil {
			log.Error("Failed to load session", logger.String("sid", sid), logger.Err(err))
			c.String(http.StatusInternalServerError, "session storage unavailable")
			c.Abort()
			return
		}

		c.Set(storeKey, store)
		c.Next()
	}
}

// StoreFrom returns the session store attached by the Session middleware.
func StoreFrom(c *gin.Context) *session.Store {
	return c.MustGet(storeKey).(*session.Store)
}
