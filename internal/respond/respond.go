package respond

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"

	"vodmill/internal/model"
)

// The frontend is served from a different origin, so every response carries
// the permissive CORS header the API gateway expects to pass through.
var headers = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

// JSON renders body as an API Gateway proxy response.
func JSON(status int, body any) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		// The bodies rendered here are plain structs and slices; a
		// marshal failure is a programming error.
		panic(err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(payload),
	}
}

// Error renders the generic error body shared by all handlers.
func Error(status int, err error) events.APIGatewayProxyResponse {
	return JSON(status, model.ErrorResponse{Error: err.Error()})
}
