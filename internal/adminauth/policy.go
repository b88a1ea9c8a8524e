package adminauth

import (
	"github.com/dgellow/shop-admin/internal/config"
	"github.com/dgellow/shop-admin/internal/emailutil"
)

// Policy decides which verified Google accounts may hold an admin session
type Policy struct {
	adminEmails    []string
	allowedDomains []string
}

// NewPolicy builds the policy from the auth configuration
func NewPolicy(authConfig config.AuthConfig) Policy {
	emails := make([]string, 0, len(authConfig.AdminEmails))
	for _, e := range authConfig.AdminEmails {
		emails = append(emails, emailutil.Normalize(e))
	}
	return Policy{adminEmails: emails, allowedDomains: authConfig.AllowedDomains}
}

// Allows reports whether email may sign in. With no lists configured every
// verified account is admitted; otherwise either list grants access.
func (p Policy) Allows(email string) bool {
	normalized := emailutil.Normalize(email)
	if normalized == "" {
		return false
	}
	if len(p.adminEmails) == 0 && len(p.allowedDomains) == 0 {
		return true
	}
	if IsConfigAdmin(normalized, p.adminEmails) {
		return true
	}
	return len(p.allowedDomains) > 0 && emailutil.DomainAllowed(normalized, p.allowedDomains)
}

// IsConfigAdmin checks if an email is in the configured admin list
func IsConfigAdmin(email string, adminEmails []string) bool {
	normalizedEmail := emailutil.Normalize(email)
	if normalizedEmail == "" {
		return false
	}
	for _, adminEmail := range adminEmails {
		if emailutil.Normalize(adminEmail) == normalizedEmail {
			return true
		}
	}
	return false
}
