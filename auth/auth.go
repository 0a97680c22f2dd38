// Package auth issues and verifies HMAC-signed session cookies and carries
// the authenticated user ID through request contexts.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type ctxKey struct{}

const CookieName = "session"

// UserVerifier reports whether a session's user still exists.
type UserVerifier func(ctx context.Context, uid uint) bool

// Sessions signs cookies of the form "<uid>.<sig>" with a shared secret.
type Sessions struct {
	secret   []byte
	ttl      time.Duration
	secure   bool
	verifier UserVerifier
}

// NewSessions returns a session manager. verifier may be nil.
func NewSessions(secret string, ttl time.Duration, secure bool, verifier UserVerifier) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure, verifier: verifier}
}

func (s *Sessions) sign(uid string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(uid))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Create sets the session cookie for userID.
func (s *Sessions) Create(w http.ResponseWriter, userID uint) {
	uid := strconv.FormatUint(uint64(userID), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    uid + "." + s.sign(uid),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	})
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// Parse validates the session cookie and returns its user ID.
func (s *Sessions) Parse(r *http.Request) (uint, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	uid, sig, ok := strings.Cut(c.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(s.sign(uid))) {
		return 0, false
	}
	id, err := strconv.ParseUint(uid, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Middleware attaches the user ID of a valid session to the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := s.Parse(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 when the request carries no session or the
// session's user no longer exists.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if ok && s.verifier != nil && !s.verifier(r.Context(), uid) {
			s.Clear(w)
			ok = false
		}
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(ctxKey{}).(uint)
	return id, ok && id != 0
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword compares a bcrypt hash with a candidate password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
