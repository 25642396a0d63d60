package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoCaller     = errors.New("token names no calling service")
	ErrMissingScope = errors.New("token lacks required scope")
	ErrAudience     = errors.New("token audience mismatch")
)

// TokenVerifier checks bearer tokens of calling services.
type TokenVerifier interface {
	Validate(tokenString string) (*Claims, error)
	Close() error
}

// Claims identifies the service calling the API.
type Claims struct {
	Service string `json:"svc,omitempty"`
	Scope   string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Caller returns the name the caller is tracked under, preferring the
// service name over the subject.
func (c *Claims) Caller() string {
	if c.Service != "" {
		return c.Service
	}
	return c.Subject
}

// HasScope reports whether the space-separated scope claim grants scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(strings.Fields(c.Scope), scope)
}

// JWKSConfig describes an identity provider that signs caller tokens.
type JWKSConfig struct {
	Issuer   string
	Audience string
	// Scope, when set, must appear in the token's scope claim.
	Scope      string
	HTTPClient *http.Client
}

// JWKSVerifier validates caller tokens signed by the provider's published
// keys. Keys are refreshed in the background until the ctx given to
// NewJWKSVerifier ends.
type JWKSVerifier struct {
	keys keyfunc.Keyfunc
	cfg  JWKSConfig
}

type oidcDiscovery struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

func NewJWKSVerifier(ctx context.Context, cfg JWKSConfig) (*JWKSVerifier, error) {
	cfg.Issuer = strings.TrimRight(cfg.Issuer, "/")
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("issuer is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	doc, err := discover(ctx, cfg.HTTPClient, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover signing keys: %w", err)
	}

	keys, err := keyfunc.NewDefaultCtx(ctx, []string{doc.JWKSURI})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", doc.JWKSURI, err)
	}

	return &JWKSVerifier{keys: keys, cfg: cfg}, nil
}

func discover(ctx context.Context, httpClient *http.Client, issuer string) (*oidcDiscovery, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuer+"/.well-known/openid-configuration", nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery returned status %d", resp.StatusCode)
	}

	var doc oidcDiscovery
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid discovery document: %w", err)
	}
	if doc.JWKSURI == "" {
		return nil, fmt.Errorf("discovery document has no jwks_uri")
	}
	if doc.Issuer != "" && strings.TrimRight(doc.Issuer, "/") != issuer {
		return nil, fmt.Errorf("discovery issuer %q does not match %q", doc.Issuer, issuer)
	}
	return &doc, nil
}

// Validate parses tokenString, then checks issuer, expiry, audience, caller
// identity and the required scope.
func (v *JWKSVerifier) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, v.keys.Keyfunc,
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if v.cfg.Audience != "" {
		aud, _ := claims.GetAudience()
		if !slices.Contains(aud, v.cfg.Audience) {
			return nil, ErrAudience
		}
	}
	if err := checkCaller(claims, v.cfg.Scope); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *JWKSVerifier) Close() error {
	return nil
}

func checkCaller(claims *Claims, scope string) error {
	if claims.Caller() == "" {
		return ErrNoCaller
	}
	if scope != "" && !claims.HasScope(scope) {
		return ErrMissingScope
	}
	return nil
}
