package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/dgellow/shop-admin/internal/ioutil"
	"github.com/dgellow/shop-admin/internal/log"
)

// flexBool accepts both true and "true". tokeninfo returns booleans as strings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected boolean, got %s", data)
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("expected boolean, got %q", s)
	}
	*b = flexBool(v)
	return nil
}

type tokenInfoResponse struct {
	Audience      string    `json:"aud"`
	Issuer        string    `json:"iss"`
	Subject       string    `json:"sub"`
	Email         string    `json:"email"`
	EmailVerified *flexBool `json:"email_verified"`
	Name          string    `json:"name"`
	HostedDomain  string    `json:"hd"`
	Expiry        string    `json:"exp"`
}

// TokenInfoVerifier validates ID tokens by asking Google's tokeninfo endpoint
type TokenInfoVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// NewTokenInfoVerifier creates a verifier calling endpoint with httpClient
func NewTokenInfoVerifier(clientID, endpoint string, httpClient *http.Client) *TokenInfoVerifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenInfoVerifier{
		clientID:   clientID,
		endpoint:   endpoint,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Verify implements IdentityVerifier
func (v *TokenInfoVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	u, err := url.Parse(v.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing tokeninfo endpoint: %w", err)
	}
	q := u.Query()
	q.Set("id_token", rawIDToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, identityError("identity provider timed out", err)
		}
		return nil, identityError("identity provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.LogDebugWithFields("googleauth", "tokeninfo rejected identity token", map[string]any{
			"status": resp.StatusCode,
			"body":   ioutil.ReadLimited(resp.Body, 512),
		})
		return nil, identityError(fmt.Sprintf("identity token rejected by provider (status %d)", resp.StatusCode), nil)
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return nil, identityError("identity provider returned an unreadable response", err)
	}

	if info.Audience != v.clientID {
		return nil, identityError("identity token audience mismatch", nil)
	}
	if !slices.Contains(googleIssuers, info.Issuer) {
		return nil, identityError("identity token issuer is not Google", nil)
	}
	if info.Expiry != "" {
		exp, err := strconv.ParseInt(info.Expiry, 10, 64)
		if err != nil {
			return nil, identityError("identity token has an invalid expiry", err)
		}
		if v.now().Unix() >= exp {
			return nil, identityError("identity token has expired", nil)
		}
	}
	if info.EmailVerified != nil && !bool(*info.EmailVerified) {
		return nil, identityError("email address is not verified", nil)
	}

	return &Identity{
		Subject:       info.Subject,
		Email:         info.Email,
		EmailVerified: info.EmailVerified == nil || bool(*info.EmailVerified),
		Name:          info.Name,
		HostedDomain:  info.HostedDomain,
		Audience:      info.Audience,
		Issuer:        info.Issuer,
	}, nil
}
