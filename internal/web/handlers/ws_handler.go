package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/luxsuv/booking-web/internal/web/middleware"
	"github.com/luxsuv/booking-web/pkg/logger"
	"github.com/luxsuv/booking-web/pkg/websocket"
)

// WatchBooking handles GET /ws/bookings/:id. The page keeps a socket open
// and the hub polls the backend with this viewer's credential, pushing
// status transitions until the booking turns terminal.
func (h *Handlers) WatchBooking(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	manageToken := c.Query("manage_token")
	state := middleware.StoreFrom(c).Snapshot()
	if manageToken == "" && state.Empty() {
		c.Status(http.StatusUnauthorized)
		return
	}

	bound := h.bound(c)
	fetch := func(ctx context.Context) (string, bool, error) {
		if state.Rider != nil && manageToken == "" {
			bk, err := bound.GetRiderBooking(ctx, id)
			if err != nil {
				return "", false, err
			}
			return string(bk.Status), bk.Status.Terminal(), nil
		}
		bk, err := bound.GetGuestBooking(ctx, id, manageToken)
		if err != nil {
			return "", false, err
		}
		return string(bk.Status), bk.Status.Terminal(), nil
	}

	upgrader := gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, id, fetch, h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
