package ioutil

import (
	"fmt"
	"io"
)

// ReadLimited reads up to limit bytes from r for use in log lines. A read
// failure is described in the returned string rather than dropped.
func ReadLimited(r io.Reader, limit int64) string {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return fmt.Sprintf("<unreadable: %v>", err)
	}
	return string(body)
}
