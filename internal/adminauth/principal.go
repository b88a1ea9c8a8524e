package adminauth

import "context"

type contextKey string

const principalKey contextKey = "adminauth.principal"

// Method records which credential authenticated a request
type Method string

const (
	MethodStaticToken Method = "static_token"
	MethodSession     Method = "session"
)

// Principal is the admin identity attached to an authenticated request
type Principal struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Method  Method `json:"-"`
}

// StaticTokenPrincipal is the synthetic identity for callers presenting the static admin token
var StaticTokenPrincipal = Principal{
	Subject: "static-admin-token",
	Email:   "admin-token@local",
	Name:    "Static admin token",
	Method:  MethodStaticToken,
}

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal from context
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
