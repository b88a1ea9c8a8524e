package envutil

import (
	"os"
	"strings"
)

// IsProduction checks if we're running in a production-like environment
// where cookies must be marked Secure
func IsProduction() bool {
	env := strings.ToLower(os.Getenv("SHOP_ADMIN_ENV"))
	return env == "production" || env == "prod" || env == "staging"
}
