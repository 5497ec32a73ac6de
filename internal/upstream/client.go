package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/luxsuv/booking-web/internal/session"
	apperrors "github.com/luxsuv/booking-web/pkg/errors"
	"github.com/luxsuv/booking-web/pkg/logger"
)

const maxErrorBody = 1 << 20

// Config holds booking backend connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// LatencyRecorder receives the wall time of each backend request.
type LatencyRecorder interface {
	RecordUpstreamLatency(latencyMs float64)
}

// Client talks to the booking backend. It carries no credential state of
// its own; bind it to a session store per browser with Bind.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	monitor    LatencyRecorder
}

// New creates a backend client.
func New(cfg Config, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

// Instrument attaches a latency recorder for backend calls.
func (c *Client) Instrument(rec LatencyRecorder) {
	c.monitor = rec
}

// Bind scopes the client to one browser's session store. All authorization
// decisions read that store and nothing else.
func (c *Client) Bind(store *session.Store) *Bound {
	return &Bound{client: c, store: store}
}

// Bound is a session-scoped view of the backend client.
type Bound struct {
	client *Client
	store  *session.Store
}

// do runs one request against the backend.
//
// Authorization: a request carrying a manage_token query parameter sends no
// Authorization header at all, the token in the URL is the complete
// credential for that booking. Otherwise the rider token wins over the
// guest token, and an empty session sends unauthenticated.
//
// A 401 on a non-manage-token request clears the whole session so a stale
// or revoked credential is not sent again. Navigation is left to the view
// layer; reacting here is what causes redirect loops.
func (b *Bound) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := b.client.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	manageTokenReq := query.Get("manage_token") != ""

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Internal("failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apperrors.Internal("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if !manageTokenReq {
		state := b.store.Snapshot()
		switch {
		case state.Rider != nil:
			req.Header.Set("Authorization", "Bearer "+state.Rider.Token)
		case state.Guest != nil:
			req.Header.Set("Authorization", "Bearer "+state.Guest.Token)
		}
	}

	start := time.Now()
	resp, err := b.client.httpClient.Do(req)
	if b.client.monitor != nil {
		b.client.monitor.RecordUpstreamLatency(float64(time.Since(start).Milliseconds()))
	}
	if err != nil {
		b.client.logger.Warn("Backend request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.Err(err),
		)
		return apperrors.Unreachable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apperrors.Unreachable(err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !manageTokenReq {
		if cerr := b.store.ClearAll(ctx); cerr != nil {
			b.client.logger.Error("Failed to clear session after 401", logger.Err(cerr))
		} else {
			b.client.logger.Info("Session cleared after 401",
				logger.String("sid", b.store.SID()),
				logger.String("path", path),
			)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return apperrors.Internal("failed to decode backend response", err)
		}
	}
	return nil
}

// errorBody is the backend's JSON error shape: a human-readable message and
// optionally a machine code.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func decodeError(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return apperrors.Upstream(status, "", strings.TrimSpace(string(data)))
	}

	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = body.Detail
	}
	return apperrors.Upstream(status, body.Code, message)
}
