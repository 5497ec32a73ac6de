package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/luxsuv/booking-web/pkg/logger"
)

const pollInterval = 5 * time.Second

// FetchStatus fetches the current status of the watched booking using the
// watcher's own credential. A true terminal result stops the watch.
type FetchStatus func(ctx context.Context) (status string, terminal bool, err error)

// Hub maintains active watch connections and one poller per watched
// booking. The poller reuses the credential of whichever client started
// the watch; later watchers of the same booking piggyback on it.
type Hub struct {
	clients    map[*Client]bool
	watchers   map[int64]*watcher
	register   chan *Client
	unregister chan *Client
	updates    chan statusUpdate
	mu         sync.RWMutex
	logger     *logger.Logger
}

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type statusUpdate struct {
	bookingID int64
	status    string
	terminal  bool
}

// NewHub creates a new watch hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		watchers:   make(map[int64]*watcher),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		updates:    make(chan statusUpdate, 64),
		logger:     log,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			w, ok := h.watchers[client.BookingID]
			if !ok {
				w = newWatcher(client.BookingID, client.Fetch, h)
				h.watchers[client.BookingID] = w
				go w.run()
			}
			w.refs++
			h.mu.Unlock()
			h.logger.Info("Watch client registered",
				logger.String("client_id", client.ID),
				logger.Int64("booking_id", client.BookingID),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				if w, ok := h.watchers[client.BookingID]; ok {
					w.refs--
					if w.refs <= 0 {
						w.stop()
						delete(h.watchers, client.BookingID)
					}
				}
				h.logger.Info("Watch client unregistered",
					logger.String("client_id", client.ID),
				)
			}
			h.mu.Unlock()

		case upd := <-h.updates:
			h.broadcastStatus(upd)
			if upd.terminal {
				h.mu.Lock()
				if w, ok := h.watchers[upd.bookingID]; ok {
					w.stop()
					delete(h.watchers, upd.bookingID)
				}
				h.mu.Unlock()
			}
		}
	}
}

// Register registers a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// broadcastStatus sends a status update to every watcher of one booking.
func (h *Hub) broadcastStatus(upd statusUpdate) {
	data, err := json.Marshal(Message{
		Type: "status",
		Data: map[string]interface{}{
			"booking_id": upd.bookingID,
			"status":     upd.status,
			"terminal":   upd.terminal,
		},
	})
	if err != nil {
		h.logger.Error("Failed to marshal status message", logger.Err(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.BookingID != upd.bookingID {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Watch client send buffer full",
				logger.String("client_id", client.ID),
			)
		}
	}
}

// ActiveConnections returns the number of active watch connections
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// watcher polls one booking's status and feeds transitions to the hub.
type watcher struct {
	bookingID int64
	fetch     FetchStatus
	hub       *Hub
	done      chan struct{}
	stopOnce  sync.Once
	refs      int
}

func newWatcher(bookingID int64, fetch FetchStatus, hub *Hub) *watcher {
	return &watcher{
		bookingID: bookingID,
		fetch:     fetch,
		hub:       hub,
		done:      make(chan struct{}),
	}
}

func (w *watcher) run() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last string
	poll := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), pollInterval)
		defer cancel()

		status, terminal, err := w.fetch(ctx)
		if err != nil {
			w.hub.logger.Warn("Booking status poll failed",
				logger.Int64("booking_id", w.bookingID),
				logger.Err(err),
			)
			return false
		}
		if status != last {
			last = status
			w.hub.updates <- statusUpdate{bookingID: w.bookingID, status: status, terminal: terminal}
		}
		return terminal
	}

	if poll() {
		return
	}
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if poll() {
				return
			}
		}
	}
}

func (w *watcher) stop() {
	w.stopOnce.Do(func() { close(w.done) })
}
