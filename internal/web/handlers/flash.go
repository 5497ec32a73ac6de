package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "luxsuv_flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flash is a one-shot notification rendered on the next page view.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// setFlash queues a notification for the next render via a short-lived
// cookie, surviving the redirect in between.
func setFlash(c *gin.Context, typ, message string) {
	data, err := json.Marshal(Flash{Type: typ, Message: message})
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.URLEncoding.EncodeToString(data), 60, "/", "", false, true)
}

// takeFlash reads and clears the pending notification, if any.
func takeFlash(c *gin.Context) (Flash, bool) {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return Flash{}, false
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return Flash{}, false
	}
	var flash Flash
	if err := json.Unmarshal(data, &flash); err != nil {
		return Flash{}, false
	}
	return flash, true
}
