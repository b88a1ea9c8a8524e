package cookie

import (
	"net/http"
	"time"

	"github.com/dgellow/shop-admin/internal/log"
)

// SessionCookie is the name of the admin session cookie
const SessionCookie = "admin_session"

// sessionCookie returns the attributes shared by setting and clearing the
// session cookie. A browser only replaces a cookie whose path and flags match.
func sessionCookie(value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSession sets the admin session cookie
func SetSession(w http.ResponseWriter, value string, maxAge time.Duration, secure bool) {
	c := sessionCookie(value, secure)
	c.MaxAge = int(maxAge.Seconds())
	http.SetCookie(w, c)

	log.LogTraceWithFields("cookie", "Session cookie set", map[string]any{
		"maxAge":   maxAge.String(),
		"secure":   secure,
		"sameSite": "Lax",
	})
}

// ClearSession expires the admin session cookie. Go writes MaxAge < 0 as "Max-Age=0".
func ClearSession(w http.ResponseWriter, secure bool) {
	c := sessionCookie("", secure)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
	log.LogTraceWithFields("cookie", "Session cookie cleared", nil)
}

// GetSession retrieves the session cookie value
func GetSession(r *http.Request) (string, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}
