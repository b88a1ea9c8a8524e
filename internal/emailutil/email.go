package emailutil

import "strings"

// Normalize lowercases and trims an email address for comparison
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ExtractDomain returns the normalized domain part of an email address,
// or "" when the address has no single non-empty local and domain part
func ExtractDomain(email string) string {
	local, domain, ok := strings.Cut(Normalize(email), "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return ""
	}
	return domain
}

// DomainAllowed reports whether the email's domain is in allowed.
// An empty allow-list admits every domain.
func DomainAllowed(email string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	domain := ExtractDomain(email)
	if domain == "" {
		return false
	}
	for _, d := range allowed {
		if Normalize(d) == domain {
			return true
		}
	}
	return false
}
