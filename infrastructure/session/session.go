package session

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"
)

const CookieName = "X-Session-Token"

// DefaultTTL applies when no session lifetime is configured.
const DefaultTTL = 12 * time.Hour

func SessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// ClearCookie expires the session cookie in the browser.
func ClearCookie(secure bool) *http.Cookie {
	return SessionCookie("", -1, secure)
}

// Expiry returns the expiry time of a session created now.
func Expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return time.Now().Add(ttl)
}

// NewToken returns a random URL-safe session id.
func NewToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
