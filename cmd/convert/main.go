package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/rs/zerolog/log"

	"vodmill/internal/config"
	"vodmill/internal/convert"
	"vodmill/internal/notify"
)

var converter *convert.Converter

func main() {
	cfg := config.FromEnv()
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS config")
	}
	converter = convert.NewConverter(
		mediaconvert.NewFromConfig(awsCfg),
		dynamodb.NewFromConfig(awsCfg),
		cfg,
		notify.NewNotifier(),
	)
	lambda.Start(handle)
}

// handle processes one batch of queued upload notifications. Errors go back
// to the runtime so the queue's own redelivery policy applies; no response
// payload is synthesized for a consumer nobody reads.
func handle(ctx context.Context, event events.SQSEvent) error {
	for _, message := range event.Records {
		notification, err := convert.ParseNotification([]byte(message.Body))
		if err != nil {
			log.Error().Err(err).Str("messageId", message.MessageId).Msg("failed to parse the upload notification")
			return err
		}
		submission, err := converter.Submit(ctx, notification)
		if err != nil {
			log.Error().Err(err).Str("key", notification.SourceKey).Msg("failed to submit the conversion job")
			return err
		}
		log.Info().
			Str("assetId", submission.AssetID).
			Str("jobId", submission.JobID).
			Str("key", submission.SourceKey).
			Msg("submitted the conversion job")
	}
	return nil
}
