package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"vodmill/internal/config"
	"vodmill/internal/presign"
)

func main() {
	cfg := config.FromEnv()
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS config")
	}
	issuer := presign.NewIssuer(s3.NewPresignClient(s3.NewFromConfig(awsCfg)), cfg)
	lambda.Start(issuer.Handle)
}
