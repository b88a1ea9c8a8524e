package urlutil

import (
	"fmt"
	"net/url"
)

// AbsoluteURL resolves route against base, keeping any path prefix base carries.
// base must be absolute (scheme and host).
func AbsoluteURL(base, route string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base URL %q is not absolute", base)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.JoinPath(route).String(), nil
}
