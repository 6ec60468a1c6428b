package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"vodmill/internal/auth"
	"vodmill/internal/config"
)

func main() {
	gate := auth.NewGate(auth.NewVerifier(config.FromEnv()))
	lambda.Start(gate.Handle)
}
