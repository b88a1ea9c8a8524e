package storage

import (
	"context"
	"errors"
	"time"
)

// ErrLoginNotFound is returned when no login has been recorded for a subject
var ErrLoginNotFound = errors.New("login not found")

// LoginRecord tracks an admin who has signed in with Google
type LoginRecord struct {
	Subject    string    `json:"sub"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	FirstSeen  time.Time `json:"firstSeen"`
	LastSeen   time.Time `json:"lastSeen"`
	LoginCount int64     `json:"loginCount"`
}

// LoginStore keeps the admin login log. It is not consulted when
// authenticating requests; sessions stay stateless.
type LoginStore interface {
	// RecordLogin creates or refreshes the record for subject
	RecordLogin(ctx context.Context, subject, email, name string) error
	GetLogin(ctx context.Context, subject string) (*LoginRecord, error)
	// ListLogins returns every record, most recent login first
	ListLogins(ctx context.Context) ([]LoginRecord, error)
	Close() error
}
