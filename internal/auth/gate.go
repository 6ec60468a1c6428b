package auth

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
)

const invokeAction = "execute-api:Invoke"

// Gate turns a token verification result into the allow/deny policy the
// request router consumes. Verification failures become Deny policies,
// never handler errors.
type Gate struct {
	verifier *Verifier
}

func NewGate(verifier *Verifier) *Gate {
	return &Gate{verifier: verifier}
}

func (g *Gate) Handle(ctx context.Context, request events.APIGatewayCustomAuthorizerRequestTypeRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	header := request.Headers["Authorization"]
	if header == "" {
		header = request.Headers["authorization"]
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return deny(request.MethodArn), nil
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("rejected a bearer token")
		return deny(request.MethodArn), nil
	}

	response := policy(claims.Subject, "Allow", request.MethodArn)
	response.Context = map[string]any{
		"sub":    claims.Subject,
		"issuer": claims.Issuer,
	}
	return response, nil
}

func deny(resource string) events.APIGatewayCustomAuthorizerResponse {
	return policy("user", "Deny", resource)
}

func policy(principal, effect, resource string) events.APIGatewayCustomAuthorizerResponse {
	return events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: principal,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version: "2012-10-17",
			Statement: []events.IAMPolicyStatement{
				{
					Action:   []string{invokeAction},
					Effect:   effect,
					Resource: []string{resource},
				},
			},
		},
	}
}
