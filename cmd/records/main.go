package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog/log"

	"vodmill/internal/config"
	"vodmill/internal/records"
)

func main() {
	cfg := config.FromEnv()
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS config")
	}
	lister := records.NewLister(dynamodb.NewFromConfig(awsCfg), cfg)
	lambda.Start(lister.Handle)
}
