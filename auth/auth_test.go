package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func sessionRequest(t *testing.T, s *Sessions, uid uint) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	s.Create(w, uid)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions("secret", time.Hour, false, nil)
	r := sessionRequest(t, s, 42)
	uid, ok := s.Parse(r)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42, got %d ok=%v", uid, ok)
	}
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	issued := NewSessions("one", time.Hour, false, nil)
	other := NewSessions("two", time.Hour, false, nil)
	r := sessionRequest(t, issued, 42)
	if _, ok := other.Parse(r); ok {
		t.Fatal("cookie signed with another secret must be rejected")
	}
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "42"})
	if _, ok := issued.Parse(r); ok {
		t.Fatal("unsigned cookie must be rejected")
	}
}

func TestRequireAuth(t *testing.T) {
	known := map[uint]bool{1: true}
	s := NewSessions("secret", time.Hour, false, func(_ context.Context, uid uint) bool { return known[uid] })
	h := s.Middleware(s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, sessionRequest(t, s, 1))
	if w.Code != http.StatusNoContent {
		t.Fatalf("known user: expected 204 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, sessionRequest(t, s, 9))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user: expected 401 got %d", w.Code)
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(h, "s3cret!") || CheckPassword(h, "wrong") {
		t.Fatal("password check mismatch")
	}
}
