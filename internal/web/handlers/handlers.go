package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luxsuv/booking-web/internal/upstream"
	"github.com/luxsuv/booking-web/internal/web/middleware"
	apperrors "github.com/luxsuv/booking-web/pkg/errors"
	"github.com/luxsuv/booking-web/pkg/logger"
	"github.com/luxsuv/booking-web/pkg/monitoring"
	"github.com/luxsuv/booking-web/pkg/websocket"
	"github.com/redis/go-redis/v9"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Upstream *upstream.Client
	Redis    *redis.Client
	Logger   *logger.Logger
	Monitor  *monitoring.NewRelicApp
	Hub      *websocket.Hub
}

// NewHandlers creates a new Handlers instance
func NewHandlers(up *upstream.Client, redisClient *redis.Client, log *logger.Logger, monitor *monitoring.NewRelicApp, hub *websocket.Hub) *Handlers {
	return &Handlers{
		Upstream: up,
		Redis:    redisClient,
		Logger:   log,
		Monitor:  monitor,
		Hub:      hub,
	}
}

// bound scopes the backend client to the requesting browser's session.
func (h *Handlers) bound(c *gin.Context) *upstream.Bound {
	return h.Upstream.Bind(middleware.StoreFrom(c))
}

// render merges identity and any pending flash into the template data.
func (h *Handlers) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	state := middleware.StoreFrom(c).Snapshot()
	if state.Rider != nil {
		data["User"] = state.Rider.User
	}
	if state.Guest != nil {
		data["GuestEmail"] = state.Guest.Email
	}
	if flash, ok := takeFlash(c); ok {
		data["Flash"] = flash
	}
	c.HTML(status, name, data)
}

// viewMessage maps an operation error to the transient message shown to
// the user. 400/422 pass the backend message through verbatim; everything
// else gets a canned message.
func viewMessage(err error) string {
	appErr := apperrors.GetAppError(err)
	switch appErr.Status {
	case http.StatusUnauthorized:
		return apperrors.ErrSessionExpired.Message
	case http.StatusNotFound:
		return apperrors.ErrBookingNotFound.Message
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErr.Message
	case 0:
		return "Something went wrong. Please try again."
	default:
		return appErr.Message
	}
}

// failAndRedirect flashes the mapped message and sends the browser to
// target. A 401 has already emptied the session, so guarded targets will
// bounce to the right entry point on the next request.
func (h *Handlers) failAndRedirect(c *gin.Context, err error, target string) {
	h.Logger.Warn("Request failed at view boundary",
		logger.String("path", c.FullPath()),
		logger.Err(err),
	)
	if h.Monitor != nil && apperrors.StatusOf(err) == http.StatusUnauthorized {
		h.Monitor.RecordSessionInvalidated()
	}
	setFlash(c, flashError, viewMessage(err))
	c.Redirect(http.StatusFound, target)
}
