package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		route string
		want  string
	}{
		{"bare host", "https://admin.shop.example", "/api/auth/google/callback", "https://admin.shop.example/api/auth/google/callback"},
		{"trailing slash", "https://admin.shop.example/", "/api/auth/google/callback", "https://admin.shop.example/api/auth/google/callback"},
		{"path prefix", "https://shop.example/backoffice", "/api/auth/me", "https://shop.example/backoffice/api/auth/me"},
		{"port", "http://localhost:8080", "/health", "http://localhost:8080/health"},
		{"query dropped", "https://admin.shop.example?x=1", "/health", "https://admin.shop.example/health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AbsoluteURL(tt.base, tt.route)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("relative base", func(t *testing.T) {
		_, err := AbsoluteURL("/admin", "/health")
		assert.Error(t, err)
	})

	t.Run("unparseable base", func(t *testing.T) {
		_, err := AbsoluteURL("http://[::1", "/health")
		assert.Error(t, err)
	})
}
