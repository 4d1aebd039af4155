package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"sky24/web/internal/models"
)

// fakeBackend is an in-memory SKY24 API good enough for handler tests.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	tokens   map[string]models.User
	listings []models.Listing
	users    []models.User
	pending  []models.PendingBroker
	fail     map[string]int
	login    map[string]struct {
		password string
		token    string
	}
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{
		tokens: map[string]models.User{},
		fail:   map[string]int{},
		login: map[string]struct {
			password string
			token    string
		}{},
	}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) addUser(token, password string, u models.User) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.tokens[token] = u
	fb.users = append(fb.users, u)
	fb.login[u.Username] = struct {
		password string
		token    string
	}{password, token}
}

func (fb *fakeBackend) called(prefix string) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, c := range fb.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (fb *fakeBackend) callCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.calls)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	call := r.Method + " " + r.URL.Path
	fb.calls = append(fb.calls, call)

	if status, ok := fb.fail[call]; ok {
		writeJSON(w, status, map[string]string{"error": "injected failure"})
		return
	}

	var user *models.User
	if h := r.Header.Get("Authorization"); h != "" {
		u, ok := fb.tokens[strings.TrimPrefix(h, "Bearer ")]
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "jwt expired"})
			return
		}
		user = &u
	}
	isFounder := user != nil && user.Role == models.UserRoleFounder

	path := r.URL.Path
	switch {
	case call == "POST /api/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		entry, ok := fb.login[body["login"]]
		if !ok || entry.password != body["password"] {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": entry.token, "user": fb.tokens[entry.token]})

	case call == "POST /api/register":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		u := models.User{ID: "new", Username: r.FormValue("username"), Role: models.UserRole(r.FormValue("role"))}
		fb.tokens["newtoken"] = u
		writeJSON(w, http.StatusOK, map[string]any{"token": "newtoken", "user": u})

	case call == "POST /api/forgot-password":
		writeJSON(w, http.StatusOK, map[string]any{})

	case call == "POST /api/reset-password":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["token"] != "resettok" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid or expired token"})
			return
		}
		u := models.User{ID: "u5", Username: "ravi", Role: models.UserRoleBuyer}
		fb.tokens["afterreset"] = u
		writeJSON(w, http.StatusOK, map[string]any{"token": "afterreset", "user": u})

	case call == "GET /api/listings":
		q := r.URL.Query()
		out := []models.Listing{}
		for _, l := range fb.listings {
			if v := q.Get("city"); v != "" && l.City != v {
				continue
			}
			if v := q.Get("state"); v != "" && l.State != v {
				continue
			}
			if v := q.Get("type"); v != "" && l.PropertyType != v {
				continue
			}
			if v := q.Get("brokerId"); v != "" && l.BrokerID != v {
				continue
			}
			out = append(out, l)
		}
		writeJSON(w, http.StatusOK, map[string]any{"listings": out})

	case call == "POST /api/listings":
		if user == nil || user.Role != models.UserRoleBroker {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Brokers only"})
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		l := models.Listing{ID: "L100", City: r.FormValue("city"), BrokerID: user.BrokerID, Photos: models.Photos{Main: "uploads/main.jpg"}}
		fb.listings = append(fb.listings, l)
		writeJSON(w, http.StatusCreated, map[string]any{"listing": l})

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/sold"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/listings/"), "/sold")
		for i := range fb.listings {
			if fb.listings[i].ID == id {
				fb.listings[i].IsSold = true
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{})

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/broker/"):
		id := strings.TrimPrefix(path, "/api/broker/")
		if id != "B1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Broker not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"broker": models.BrokerProfile{Username: "asha", BrokerID: "B1", Mobile: "9876543210"}})

	case strings.HasPrefix(path, "/api/admin/"):
		if !isFounder {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Founder only"})
			return
		}
		fb.serveAdmin(w, r)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (fb *fakeBackend) serveAdmin(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/api/admin/users":
		writeJSON(w, http.StatusOK, map[string]any{"users": fb.users})
	case r.Method == http.MethodGet && path == "/api/admin/listings":
		writeJSON(w, http.StatusOK, map[string]any{"listings": fb.listings})
	case r.Method == http.MethodGet && path == "/api/admin/pending-brokers":
		writeJSON(w, http.StatusOK, map[string]any{"pending": fb.pending})
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/api/admin/listings/"):
		id := strings.TrimPrefix(path, "/api/admin/listings/")
		kept := fb.listings[:0]
		for _, l := range fb.listings {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		fb.listings = kept
		writeJSON(w, http.StatusOK, map[string]any{})
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/api/admin/ban/"):
		var body map[string]bool
		_ = json.NewDecoder(r.Body).Decode(&body)
		id := strings.TrimPrefix(path, "/api/admin/ban/")
		for i := range fb.users {
			if fb.users[i].ID == id {
				fb.users[i].Banned = body["banned"]
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/api/admin/verify-broker/"):
		id := strings.TrimPrefix(path, "/api/admin/verify-broker/")
		kept := fb.pending[:0]
		for _, p := range fb.pending {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		fb.pending = kept
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}
