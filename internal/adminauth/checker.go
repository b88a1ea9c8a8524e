// Package adminauth decides whether a request carries admin credentials.
// Two credentials are accepted: the static x-admin-token header for
// automation, and the signed admin_session cookie minted after Google login.
package adminauth

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/dgellow/shop-admin/internal/cookie"
	"github.com/dgellow/shop-admin/internal/log"
	"github.com/dgellow/shop-admin/internal/session"
)

// AdminTokenHeader carries the static admin token
const AdminTokenHeader = "x-admin-token"

// Result labels the outcome of a single checker
type Result string

const (
	ResultSuccess Result = "success"
	ResultAbsent  Result = "absent"
	ResultInvalid Result = "invalid"
	ResultExpired Result = "expired"
)

// Checker inspects one kind of credential. Anything other than ResultSuccess
// means the checker does not apply; checkers never fail a request themselves.
type Checker interface {
	Name() string
	Check(r *http.Request) (Principal, Result)
}

// StaticTokenChecker matches the x-admin-token header against the configured token
type StaticTokenChecker struct {
	token []byte
}

// NewStaticTokenChecker creates a checker for token. An empty token matches nothing.
func NewStaticTokenChecker(token string) *StaticTokenChecker {
	return &StaticTokenChecker{token: []byte(token)}
}

func (c *StaticTokenChecker) Name() string {
	return "static_token"
}

func (c *StaticTokenChecker) Check(r *http.Request) (Principal, Result) {
	presented := r.Header.Get(AdminTokenHeader)
	if presented == "" {
		return Principal{}, ResultAbsent
	}
	if len(c.token) == 0 || subtle.ConstantTimeCompare([]byte(presented), c.token) != 1 {
		return Principal{}, ResultInvalid
	}
	return StaticTokenPrincipal, ResultSuccess
}

// CookieChecker validates the signed admin_session cookie
type CookieChecker struct {
	codec *session.Codec
}

// NewCookieChecker creates a checker backed by codec
func NewCookieChecker(codec *session.Codec) *CookieChecker {
	return &CookieChecker{codec: codec}
}

func (c *CookieChecker) Name() string {
	return "session_cookie"
}

func (c *CookieChecker) Check(r *http.Request) (Principal, Result) {
	token, err := cookie.GetSession(r)
	if err != nil || token == "" {
		return Principal{}, ResultAbsent
	}

	payload, err := c.codec.Parse(token)
	if err != nil {
		log.LogTraceWithFields("adminauth", "Session cookie rejected", map[string]any{
			"error": err.Error(),
		})
		if errors.Is(err, session.ErrExpired) {
			return Principal{}, ResultExpired
		}
		return Principal{}, ResultInvalid
	}

	return Principal{
		Subject: payload.Subject,
		Email:   payload.Email,
		Name:    payload.Name,
		Method:  MethodSession,
	}, ResultSuccess
}

// Observer receives the outcome of every checker that ran
type Observer interface {
	ObserveAuthCheck(checker string, result Result)
}

// Authenticator runs checkers in order and stops at the first success
type Authenticator struct {
	checkers []Checker
	observer Observer
}

// NewAuthenticator creates an authenticator over checkers. observer may be nil.
func NewAuthenticator(observer Observer, checkers ...Checker) *Authenticator {
	return &Authenticator{checkers: checkers, observer: observer}
}

// Authenticate returns the principal of the first checker that accepts r
func (a *Authenticator) Authenticate(r *http.Request) (Principal, bool) {
	for _, checker := range a.checkers {
		principal, result := checker.Check(r)
		if a.observer != nil {
			a.observer.ObserveAuthCheck(checker.Name(), result)
		}
		if result == ResultSuccess {
			return principal, true
		}
	}
	return Principal{}, false
}
