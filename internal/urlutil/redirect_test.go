package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{name: "root", from: "/", want: "/"},
		{name: "admin path", from: "/admin/products", want: "/admin/products"},
		{name: "with query", from: "/admin/orders?status=open", want: "/admin/orders?status=open"},
		{name: "empty", from: "", want: "/admin"},
		{name: "absolute url", from: "https://evil.example/admin", want: "/admin"},
		{name: "scheme relative", from: "//evil.example", want: "/admin"},
		{name: "backslash trick", from: "/\\evil.example", want: "/admin"},
		{name: "relative path", from: "admin", want: "/admin"},
		{name: "javascript url", from: "javascript:alert(1)", want: "/admin"},
		{name: "header injection", from: "/admin\r\nSet-Cookie: x=y", want: "/admin"},
		{name: "tab before slash", from: "/\t/evil", want: "/admin"},
		{name: "newline before slash", from: "/\n/evil", want: "/admin"},
		{name: "space before slash", from: "/ /evil", want: "/admin"},
		{name: "nul byte", from: "/\x00", want: "/admin"},
		{name: "delete char", from: "/\x7f/evil", want: "/admin"},
		{name: "trailing tab", from: "/admin\t", want: "/admin"},
		{name: "non-breaking space", from: "/\u00a0/evil", want: "/admin"},
		{name: "invalid utf8", from: "/\xff/evil", want: "/admin"},
		{name: "bad escape", from: "/admin%zz", want: "/admin"},
		{name: "encoded slash kept", from: "/admin/%2Fproducts", want: "/admin/%2Fproducts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeRedirectPath(tt.from, "/admin"))
		})
	}
}
