package handlers_test

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxsuv/booking-web/internal/session"
	"github.com/luxsuv/booking-web/internal/upstream"
	"github.com/luxsuv/booking-web/internal/web/handlers"
	"github.com/luxsuv/booking-web/internal/web/middleware"
	"github.com/luxsuv/booking-web/internal/web/routes"
	"github.com/luxsuv/booking-web/pkg/logger"
)

// testTemplates stands in for the real HTML files so tests can assert on
// the data handed to each view without parsing full pages.
func testTemplates() *template.Template {
	const defs = `
{{define "index.html"}}landing{{end}}
{{define "register.html"}}register error={{.Error}}{{end}}
{{define "register_done.html"}}registered {{.Message}} {{.DevVerifyURL}}{{end}}
{{define "verify_email.html"}}verify {{.Message}}{{.Error}}{{end}}
{{define "login.html"}}login error={{.Error}}{{end}}
{{define "guest_access.html"}}guest-access sent={{.CodeSent}} error={{.Error}}{{end}}
{{define "guest_booking_new.html"}}guest-book error={{.Error}}{{end}}
{{define "booking_new.html"}}book error={{.Error}}{{end}}
{{define "bookings_list.html"}}list {{range .Items}}[{{.ID}} {{.Status}}]{{end}} flash={{with .Flash}}{{.Message}}{{end}}{{end}}
{{define "booking_detail.html"}}detail id={{.Booking.ID}} status={{.Booking.Status}} modify={{.CanModify}} flash={{with .Flash}}{{.Message}}{{end}}{{end}}
`
	return template.Must(template.New("test").Parse(defs))
}

func newTestApp(t *testing.T, backend http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	log := logger.NewNop()
	client := upstream.New(upstream.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, log)
	h := handlers.NewHandlers(client, nil, log, nil, nil)

	r := gin.New()
	r.SetHTMLTemplate(testTemplates())
	sessionMW := middleware.Session(session.NewManager(session.NewMemoryPersister()), middleware.CookieConfig{
		Name:   "luxsuv_sid",
		MaxAge: 3600,
	}, log)
	routes.SetupRoutes(r, h, sessionMW, nil)
	return r
}

// browser replays the session and flash cookies across requests the way a
// real browser would.
type browser struct {
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(engine *gin.Engine) *browser {
	return &browser{engine: engine, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	b.engine.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return w
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil)
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, target, form)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func futureSlot() string {
	return time.Now().Add(48 * time.Hour).Format("2006-01-02T15:04")
}

func TestRiderLoginFlow(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			writeJSON(w, http.StatusOK, gin.H{
				"access_token": "rider-token",
				"user":         gin.H{"id": 9, "email": "ann@example.com", "name": "Ann"},
			})
		case "/v1/rider/bookings":
			assert.Equal(t, "Bearer rider-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, []gin.H{
				{"id": 1, "status": "pending", "pickup": "A", "dropoff": "B"},
				{"id": 2, "status": "confirmed", "pickup": "C", "dropoff": "D"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))

	resp := b.post("/login", url.Values{"email": {"ann@example.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/rider/bookings", resp.Header().Get("Location"))

	resp = b.get("/rider/bookings")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "[1 pending]")
	assert.Contains(t, resp.Body.String(), "[2 confirmed]")
	assert.Contains(t, resp.Body.String(), "flash=Welcome back!")
}

func TestLoginRejectedShowsMessage(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, gin.H{"error": "bad credentials"})
	}

	b := newBrowser(newTestApp(t, backend))

	resp := b.post("/login", url.Values{"email": {"ann@example.com"}, "password": {"wrong1"}})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid email or password")

	// The failed login must not leave any identity behind.
	resp = b.get("/rider/bookings")
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))
}

func TestRiderGuardRedirectsAnonymous(t *testing.T) {
	b := newBrowser(newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
	}))

	resp := b.get("/rider/bookings")
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))
}

func TestGuestAccessFlow(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/guest/access/request":
			writeJSON(w, http.StatusOK, gin.H{"message": "code sent"})
		case "/v1/guest/access/verify":
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "guest@example.com", payload["email"])
			assert.Equal(t, "123456", payload["code"])
			writeJSON(w, http.StatusOK, gin.H{"session_token": "guest-token"})
		case "/v1/guest/bookings":
			assert.Equal(t, "Bearer guest-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, []gin.H{{"id": 5, "status": "pending"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))

	resp := b.post("/guest/access/request", url.Values{"email": {"guest@example.com"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "sent=true")

	resp = b.post("/guest/access/verify", url.Values{"email": {"guest@example.com"}, "code": {"123456"}})
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/guest/bookings", resp.Header().Get("Location"))

	resp = b.get("/guest/bookings")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "[5 pending]")
}

func TestGuestBookingManageLink(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/guest/bookings":
			assert.Empty(t, r.Header.Get("Authorization"))
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "Guest One", payload["rider_name"])
			assert.Equal(t, "Airport", payload["pickup"])
			writeJSON(w, http.StatusCreated, gin.H{"id": 7, "manage_token": "mt-1", "status": "pending"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/guest/bookings/7":
			// The manage token in the URL is the whole credential.
			assert.Equal(t, "mt-1", r.URL.Query().Get("manage_token"))
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, gin.H{"id": 7, "status": "pending", "pickup": "Airport", "dropoff": "Hotel"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))

	resp := b.post("/guest/book", url.Values{
		"rider_name":   {"Guest One"},
		"rider_email":  {"guest@example.com"},
		"rider_phone":  {"+15550001111"},
		"pickup":       {"Airport"},
		"dropoff":      {"Hotel"},
		"scheduled_at": {futureSlot()},
		"passengers":   {"2"},
		"luggages":     {"1"},
		"ride_type":    {"per_ride"},
	})
	require.Equal(t, http.StatusFound, resp.Code)
	location := resp.Header().Get("Location")
	assert.Equal(t, "/guest/bookings/7?manage_token=mt-1", location)

	// The manage link works without any session at all.
	fresh := newBrowser(b.engine)
	resp = fresh.get(location)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "detail id=7")
	assert.Contains(t, resp.Body.String(), "modify=true")
}

func TestCompletedBookingOffersNoActions(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			writeJSON(w, http.StatusOK, gin.H{"access_token": "t", "user": gin.H{"id": 1}})
		case "/v1/rider/bookings/3":
			writeJSON(w, http.StatusOK, gin.H{"id": 3, "status": "completed"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))
	b.post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})

	resp := b.get("/rider/bookings/3")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "modify=false")
}

func TestBackendUnauthorizedClearsSession(t *testing.T) {
	var loggedIn bool
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			loggedIn = true
			writeJSON(w, http.StatusOK, gin.H{"access_token": "stale", "user": gin.H{"id": 1}})
		case "/v1/rider/bookings":
			// Token revoked server-side.
			writeJSON(w, http.StatusUnauthorized, gin.H{"error": "token expired"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))
	b.post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})
	require.True(t, loggedIn)

	resp := b.get("/rider/bookings")
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))

	// The cleared session means the guard, not the request layer, keeps
	// bouncing subsequent visits to the sign-in page.
	resp = b.get("/rider/bookings")
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))
}

func TestCancelRiderBookingAlreadyGone(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/auth/login":
			writeJSON(w, http.StatusOK, gin.H{"access_token": "t", "user": gin.H{"id": 1}})
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/rider/bookings/4":
			writeJSON(w, http.StatusNotFound, gin.H{"error": "booking not found"})
		case r.URL.Path == "/v1/rider/bookings":
			writeJSON(w, http.StatusOK, []gin.H{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))
	b.post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})

	resp := b.post("/rider/bookings/4/cancel", url.Values{})
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/rider/bookings", resp.Header().Get("Location"))

	resp = b.get("/rider/bookings")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "flash=Booking canceled.")
}

func TestUpdateSendsOnlyChangedFields(t *testing.T) {
	orig := gin.H{
		"id": 6, "status": "pending", "pickup": "A", "dropoff": "B",
		"scheduled_at": "2030-10-01T10:00:00Z", "passengers": 2, "luggages": 1,
		"ride_type": "per_ride", "notes": "ring the bell",
	}
	var patched map[string]interface{}
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/auth/login":
			writeJSON(w, http.StatusOK, gin.H{"access_token": "t", "user": gin.H{"id": 1}})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/rider/bookings/6":
			writeJSON(w, http.StatusOK, orig)
		case r.Method == http.MethodPatch && r.URL.Path == "/v1/rider/bookings/6":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			writeJSON(w, http.StatusOK, orig)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))
	b.post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})

	// Only the dropoff changes; the rest resubmits the original values.
	when, err := time.Parse(time.RFC3339, "2030-10-01T10:00:00Z")
	require.NoError(t, err)
	resp := b.post("/rider/bookings/6", url.Values{
		"pickup":       {"A"},
		"dropoff":      {"Harbor"},
		"scheduled_at": {when.Local().Format("2006-01-02T15:04")},
		"passengers":   {"2"},
		"luggages":     {"1"},
		"ride_type":    {"per_ride"},
		"notes":        {"ring the bell"},
	})
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, map[string]interface{}{"dropoff": "Harbor"}, patched)
}

func TestBookingFormRejectsPastTime(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/login" {
			writeJSON(w, http.StatusOK, gin.H{"access_token": "t", "user": gin.H{"id": 1}})
			return
		}
		t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
	}

	b := newBrowser(newTestApp(t, backend))
	b.post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})

	resp := b.post("/rider/bookings", url.Values{
		"pickup":       {"A"},
		"dropoff":      {"B"},
		"scheduled_at": {"2020-01-01T10:00"},
		"passengers":   {"2"},
		"ride_type":    {"per_ride"},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Scheduled time must be in the future")
}

func TestRegisterShowsVerificationHint(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/register", r.URL.Path)
		writeJSON(w, http.StatusCreated, gin.H{
			"message":        "check your email",
			"dev_verify_url": "http://backend/verify?token=abc",
		})
	}

	b := newBrowser(newTestApp(t, backend))
	resp := b.post("/register", url.Values{
		"name":     {"Ann"},
		"email":    {"ann@example.com"},
		"phone":    {"+15550001111"},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "check your email")
	assert.Contains(t, resp.Body.String(), "http://backend/verify?token=abc")
}

func TestLogoutDropsBothIdentities(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/guest/access/request":
			writeJSON(w, http.StatusOK, gin.H{"message": "sent"})
		case "/v1/guest/access/verify":
			writeJSON(w, http.StatusOK, gin.H{"session_token": "guest-token"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))
	b.post("/guest/access/request", url.Values{"email": {"g@example.com"}})
	b.post("/guest/access/verify", url.Values{"email": {"g@example.com"}, "code": {"123456"}})

	resp := b.post("/logout", nil)
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/", resp.Header().Get("Location"))

	resp = b.get("/guest/bookings")
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/guest/access", resp.Header().Get("Location"))
}

func TestListPassesPaginationThrough(t *testing.T) {
	backend := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			writeJSON(w, http.StatusOK, gin.H{"access_token": "t", "user": gin.H{"id": 1}})
		case "/v1/rider/bookings":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			assert.Equal(t, "10", r.URL.Query().Get("offset"))
			assert.Equal(t, "canceled", r.URL.Query().Get("status"))
			writeJSON(w, http.StatusOK, []gin.H{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	b := newBrowser(newTestApp(t, backend))
	b.post("/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})

	resp := b.get("/rider/bookings?limit=5&offset=10&status=canceled")
	require.Equal(t, http.StatusOK, resp.Code)
}
