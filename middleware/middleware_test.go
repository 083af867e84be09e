package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"evently/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

func signedToken(t *testing.T, userID string, roles []string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		Role:   roles,
	})
	signed, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	called := false
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/events", nil), httprouter.Params{})

	if called {
		t.Fatal("handler reached without a token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

// Upgrade headers alone must never bypass token validation; the ws feed
// authenticates its own query-param token outside this wrapper.
func TestAuthenticateRejectsUpgradeHeadersWithoutToken(t *testing.T) {
	called := false
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	r := httptest.NewRequest("POST", "/api/events/E1/register", nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")

	w := httptest.NewRecorder()
	h(w, r, httprouter.Params{})

	if called {
		t.Fatal("upgrade headers bypassed authentication")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	called := false
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	r := httptest.NewRequest("POST", "/api/events", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")

	w := httptest.NewRecorder()
	h(w, r, httprouter.Params{})

	if called {
		t.Fatal("handler reached with an invalid token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	var gotUser string
	var gotRoles []string
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser, _ = r.Context().Value(globals.UserIDKey).(string)
		gotRoles, _ = r.Context().Value(globals.RoleKey).([]string)
	})

	r := httptest.NewRequest("POST", "/api/events", nil)
	r.Header.Set("Authorization", "Bearer "+signedToken(t, "u1", []string{"admin"}))

	h(httptest.NewRecorder(), r, httprouter.Params{})

	if gotUser != "u1" {
		t.Fatalf("expected userID u1 in context, got %q", gotUser)
	}
	if len(gotRoles) != 1 || gotRoles[0] != "admin" {
		t.Fatalf("expected roles [admin], got %v", gotRoles)
	}
}

func TestRequireRole(t *testing.T) {
	called := false
	h := Authenticate(RequireRole("admin", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	}))

	r := httptest.NewRequest("POST", "/api/coupons", nil)
	r.Header.Set("Authorization", "Bearer "+signedToken(t, "u1", []string{"user"}))
	w := httptest.NewRecorder()
	h(w, r, httprouter.Params{})
	if called {
		t.Fatal("non-admin reached an admin handler")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	r = httptest.NewRequest("POST", "/api/coupons", nil)
	r.Header.Set("Authorization", "Bearer "+signedToken(t, "u2", []string{"admin"}))
	h(httptest.NewRecorder(), r, httprouter.Params{})
	if !called {
		t.Fatal("admin was denied")
	}
}
