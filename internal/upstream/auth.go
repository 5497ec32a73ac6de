package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/luxsuv/booking-web/internal/booking"
)

// RegisterRequest is the payload for rider registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RegisterResponse carries the registration outcome. DevVerifyURL is only
// populated by non-production backends.
type RegisterResponse struct {
	Message      string `json:"message"`
	DevVerifyURL string `json:"dev_verify_url,omitempty"`
}

// MessageResponse is a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest is the payload for rider login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the rider credential issued on login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        booking.User `json:"user"`
}

// GuestSessionResponse carries the guest credential issued after code
// verification.
type GuestSessionResponse struct {
	SessionToken string `json:"session_token"`
}

// Register creates a rider account. The backend sends a verification email
// out-of-band.
func (b *Bound) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := b.do(ctx, http.MethodPost, "/v1/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail confirms a rider's email address with the emailed token.
func (b *Bound) VerifyEmail(ctx context.Context, token string) (*MessageResponse, error) {
	query := url.Values{"token": {token}}
	var out MessageResponse
	if err := b.do(ctx, http.MethodPost, "/v1/auth/verify-email", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a rider token. Storing the credential is
// the caller's job; this layer is pure request/response.
func (b *Bound) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := b.do(ctx, http.MethodPost, "/v1/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestGuestAccess asks the backend to email a one-time access code.
func (b *Bound) RequestGuestAccess(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return b.do(ctx, http.MethodPost, "/v1/guest/access/request", nil, payload, nil)
}

// VerifyGuestAccess exchanges an emailed code for a guest session token.
func (b *Bound) VerifyGuestAccess(ctx context.Context, email, code string) (*GuestSessionResponse, error) {
	payload := map[string]string{"email": email, "code": code}
	var out GuestSessionResponse
	if err := b.do(ctx, http.MethodPost, "/v1/guest/access/verify", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
