package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vodmill/internal/auth"
)

const (
	testIssuer   = "https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_testpool"
	testAudience = "test-client"
	testKeyID    = "test-key"
	methodArn    = "arn:aws:execute-api:eu-west-1:123456789012:api/prod/GET/records"
)

type tokenIssuer struct {
	key    *rsa.PrivateKey
	server *httptest.Server
}

func newTokenIssuer(t *testing.T) *tokenIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		{Key: &key.PublicKey, KeyID: testKeyID, Algorithm: "RS256", Use: "sig"},
	}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(keySet)
	}))
	t.Cleanup(server.Close)
	return &tokenIssuer{key: key, server: server}
}

func (ti *tokenIssuer) sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: jose.RS256,
		Key:       jose.JSONWebKey{Key: ti.key, KeyID: testKeyID},
	}, (&jose.SignerOptions{}).WithType("JWT"))
	require.NoError(t, err)
	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	require.NoError(t, err)
	return token
}

func (ti *tokenIssuer) gate() *auth.Gate {
	return auth.NewGate(&auth.Verifier{
		Issuer:     testIssuer,
		Audience:   testAudience,
		JWKSURL:    ti.server.URL,
		HTTPClient: ti.server.Client(),
	})
}

func validClaims() jwt.Claims {
	return jwt.Claims{
		Issuer:   testIssuer,
		Subject:  "user-42",
		Audience: jwt.Audience{testAudience},
		IssuedAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		Expiry:   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func request(token string) events.APIGatewayCustomAuthorizerRequestTypeRequest {
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return events.APIGatewayCustomAuthorizerRequestTypeRequest{
		MethodArn: methodArn,
		Headers:   headers,
	}
}

func effect(t *testing.T, response events.APIGatewayCustomAuthorizerResponse) string {
	t.Helper()
	require.Len(t, response.PolicyDocument.Statement, 1)
	return response.PolicyDocument.Statement[0].Effect
}

func TestGateAllowsValidToken(t *testing.T) {
	ti := newTokenIssuer(t)
	token := ti.sign(t, validClaims())

	response, err := ti.gate().Handle(context.Background(), request(token))
	require.NoError(t, err)

	assert.Equal(t, "Allow", effect(t, response))
	assert.Equal(t, "user-42", response.PrincipalID)
	assert.Equal(t, "user-42", response.Context["sub"])
	assert.Equal(t, []string{methodArn}, response.PolicyDocument.Statement[0].Resource)
}

func TestGateDeniesExpiredToken(t *testing.T) {
	ti := newTokenIssuer(t)
	claims := validClaims()
	claims.Expiry = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := ti.sign(t, claims)

	response, err := ti.gate().Handle(context.Background(), request(token))
	require.NoError(t, err)
	assert.Equal(t, "Deny", effect(t, response))
}

func TestGateDeniesWrongAudience(t *testing.T) {
	ti := newTokenIssuer(t)
	claims := validClaims()
	claims.Audience = jwt.Audience{"someone-else"}
	token := ti.sign(t, claims)

	response, err := ti.gate().Handle(context.Background(), request(token))
	require.NoError(t, err)
	assert.Equal(t, "Deny", effect(t, response))
}

func TestGateDeniesWrongIssuer(t *testing.T) {
	ti := newTokenIssuer(t)
	claims := validClaims()
	claims.Issuer = "https://evil.example.test"
	token := ti.sign(t, claims)

	response, err := ti.gate().Handle(context.Background(), request(token))
	require.NoError(t, err)
	assert.Equal(t, "Deny", effect(t, response))
}

func TestGateDeniesMissingOrMalformedHeader(t *testing.T) {
	ti := newTokenIssuer(t)
	gate := ti.gate()

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no header", nil},
		{"not bearer", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}},
		{"empty token", map[string]string{"Authorization": "Bearer "}},
		{"garbage token", map[string]string{"Authorization": "Bearer not.a.jwt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := gate.Handle(context.Background(), events.APIGatewayCustomAuthorizerRequestTypeRequest{
				MethodArn: methodArn,
				Headers:   tt.headers,
			})
			require.NoError(t, err)
			assert.Equal(t, "Deny", effect(t, response))
		})
	}
}

func TestGateDeniesUnknownSigningKey(t *testing.T) {
	ti := newTokenIssuer(t)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: jose.RS256,
		Key:       jose.JSONWebKey{Key: other, KeyID: "rogue-key"},
	}, (&jose.SignerOptions{}).WithType("JWT"))
	require.NoError(t, err)
	token, err := jwt.Signed(signer).Claims(validClaims()).Serialize()
	require.NoError(t, err)

	response, err := ti.gate().Handle(context.Background(), request(token))
	require.NoError(t, err)
	assert.Equal(t, "Deny", effect(t, response))
}

func TestGateAcceptsLowercaseHeader(t *testing.T) {
	ti := newTokenIssuer(t)
	token := ti.sign(t, validClaims())

	response, err := ti.gate().Handle(context.Background(), events.APIGatewayCustomAuthorizerRequestTypeRequest{
		MethodArn: methodArn,
		Headers:   map[string]string{"authorization": "Bearer " + token},
	})
	require.NoError(t, err)
	assert.Equal(t, "Allow", effect(t, response))
}
