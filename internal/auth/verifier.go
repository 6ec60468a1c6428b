package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"vodmill/internal/config"
)

var ErrUnknownKey = errors.New("token signed with an unknown key")

// Verifier checks bearer tokens against the identity provider's published
// signing keys. The key set is fetched lazily and cached for the life of
// the process; a failed fetch is not cached so the next request retries.
type Verifier struct {
	// Issuer and Audience are matched against the token claims.
	Issuer   string
	Audience string
	// JWKSURL serves the provider's key set document.
	JWKSURL    string
	HTTPClient *http.Client

	mu   sync.Mutex
	keys *jose.JSONWebKeySet
}

func NewVerifier(cfg config.Config) *Verifier {
	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", cfg.Region, cfg.UserPoolID)
	return &Verifier{
		Issuer:     issuer,
		Audience:   cfg.AppClientID,
		JWKSURL:    issuer + "/.well-known/jwks.json",
		HTTPClient: http.DefaultClient,
	}
}

// Verify parses and validates one token: RS256 signature against the key
// the token names, then issuer, audience, and expiry.
func (v *Verifier) Verify(ctx context.Context, token string) (*jwt.Claims, error) {
	parsed, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.RS256})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if len(parsed.Headers) == 0 || parsed.Headers[0].KeyID == "" {
		return nil, ErrUnknownKey
	}

	keys, err := v.keySet(ctx)
	if err != nil {
		return nil, err
	}
	matches := keys.Key(parsed.Headers[0].KeyID)
	if len(matches) == 0 {
		return nil, ErrUnknownKey
	}

	var claims jwt.Claims
	if err := parsed.Claims(matches[0], &claims); err != nil {
		return nil, fmt.Errorf("verify token signature: %w", err)
	}
	if err := claims.Validate(jwt.Expected{
		Issuer:      v.Issuer,
		AnyAudience: jwt.Audience{v.Audience},
		Time:        time.Now(),
	}); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (v *Verifier) keySet(ctx context.Context) (*jose.JSONWebKeySet, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keys != nil {
		return v.keys, nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, v.JWKSURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch signing keys: %w", err)
	}
	response, err := v.HTTPClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetch signing keys: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch signing keys: unexpected status %d", response.StatusCode)
	}

	var keys jose.JSONWebKeySet
	if err := json.NewDecoder(response.Body).Decode(&keys); err != nil {
		return nil, fmt.Errorf("decode signing keys: %w", err)
	}
	v.keys = &keys
	return v.keys, nil
}
