package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luxsuv/booking-web/internal/booking"
	"github.com/luxsuv/booking-web/internal/web/middleware"
	"github.com/luxsuv/booking-web/pkg/cache"
	"github.com/luxsuv/booking-web/pkg/logger"
)

const (
	recentKeyPrefix = "bookings:recent:"
	recentTTL       = 10 * time.Minute
	recentMax       = 20
)

// The list pages show freshly created bookings immediately by prepending
// them from a per-session cache, then reconcile by dropping the cache once
// a full fetch has seen them. The cache is best effort; failures only cost
// the optimistic prepend.

func (h *Handlers) recentKey(c *gin.Context) string {
	return recentKeyPrefix + middleware.StoreFrom(c).SID()
}

// prependRecent records a just-created booking for the next list render.
func (h *Handlers) prependRecent(c *gin.Context, bk *booking.Booking) {
	if h.Redis == nil {
		return
	}
	ctx := c.Request.Context()
	key := h.recentKey(c)

	recent := h.loadRecent(c)
	recent = append([]booking.Booking{*bk}, recent...)
	if len(recent) > recentMax {
		recent = recent[:recentMax]
	}

	blob, err := json.Marshal(recent)
	if err != nil {
		return
	}
	if err := cache.SetWithExpiry(ctx, h.Redis, key, blob, recentTTL); err != nil {
		h.Logger.Warn("Failed to cache recent booking", logger.Err(err))
	}
}

func (h *Handlers) loadRecent(c *gin.Context) []booking.Booking {
	if h.Redis == nil {
		return nil
	}
	raw, err := cache.Get(c.Request.Context(), h.Redis, h.recentKey(c))
	if err != nil {
		return nil
	}
	var recent []booking.Booking
	if err := json.Unmarshal([]byte(raw), &recent); err != nil {
		return nil
	}
	return recent
}

// mergeRecent prepends cached bookings that the fetched page has not
// caught up to yet, then clears the cache: the fetch is now authoritative.
// Only the unfiltered first page gets the merge.
func (h *Handlers) mergeRecent(c *gin.Context, fetched []booking.Booking, firstPage bool) []booking.Booking {
	if h.Redis == nil || !firstPage {
		return fetched
	}

	recent := h.loadRecent(c)
	if len(recent) == 0 {
		return fetched
	}

	seen := make(map[int64]bool, len(fetched))
	for _, bk := range fetched {
		seen[bk.ID] = true
	}

	merged := make([]booking.Booking, 0, len(recent)+len(fetched))
	for _, bk := range recent {
		if !seen[bk.ID] {
			merged = append(merged, bk)
		}
	}
	merged = append(merged, fetched...)

	if err := cache.Delete(c.Request.Context(), h.Redis, h.recentKey(c)); err != nil {
		h.Logger.Warn("Failed to reconcile recent bookings cache", logger.Err(err))
	}
	return merged
}
