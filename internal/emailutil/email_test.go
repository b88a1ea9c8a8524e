package emailutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "user@example.com", Normalize("user@example.com"))
	assert.Equal(t, "user@example.com", Normalize("USER@EXAMPLE.COM"))
	assert.Equal(t, "user@example.com", Normalize("  User@Example.Com\t"))
	assert.Equal(t, "", Normalize("   "))
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"owner@shop.example", "shop.example"},
		{"Owner@Shop.Example", "shop.example"},
		{"no-at-sign", ""},
		{"@shop.example", ""},
		{"owner@", ""},
		{"a@b@shop.example", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDomain(tt.input))
		})
	}
}

func TestDomainAllowed(t *testing.T) {
	assert.True(t, DomainAllowed("anyone@anywhere.example", nil))
	assert.True(t, DomainAllowed("owner@shop.example", []string{"other.example", "Shop.Example"}))
	assert.False(t, DomainAllowed("owner@evil.example", []string{"shop.example"}))
	assert.False(t, DomainAllowed("owner@shop.example.evil", []string{"shop.example"}))
	assert.False(t, DomainAllowed("malformed", []string{"shop.example"}))
}
