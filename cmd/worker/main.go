// Command worker runs the conversion pipeline outside the serverless
// runtime: it consumes upload notifications from a RabbitMQ queue instead
// of the managed queue and drives the same converter.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"vodmill/internal/config"
	"vodmill/internal/convert"
	"vodmill/internal/notify"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if endpoint := os.Getenv("AWS_ENDPOINT"); endpoint != "" {
		// Local stacks expose every service on one endpoint with static keys.
		opts = append(opts,
			awsconfig.WithBaseEndpoint(endpoint),
			awsconfig.WithCredentialsProvider(credentials.StaticCredentialsProvider{
				Value: aws.Credentials{
					AccessKeyID:     os.Getenv("AWS_ACCESS_KEY"),
					SecretAccessKey: os.Getenv("AWS_SECRET_KEY"),
				},
			}),
		)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS config")
	}
	converter := convert.NewConverter(
		mediaconvert.NewFromConfig(awsCfg),
		dynamodb.NewFromConfig(awsCfg),
		cfg,
		notify.NewNotifier(),
	)

	conn, err := amqp.Dial(os.Getenv("RABBITMQ_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open a channel")
	}
	defer channel.Close()
	channel.Qos(1, 0, false)

	queue := os.Getenv("UPLOADS_QUEUE")
	if queue == "" {
		queue = "uploads"
	}
	messages, err := channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to consume the queue")
	}

	forever := make(chan bool)

	go func() {
		for message := range messages {
			notification, err := convert.ParseNotification(message.Body)
			if err != nil {
				// A malformed body never becomes parseable; drop it.
				log.Error().Err(err).Msg("failed to parse the upload notification")
				message.Nack(false, false)
				continue
			}

			submission, err := converter.Submit(context.TODO(), notification)
			if err != nil {
				log.Error().Err(err).Str("key", notification.SourceKey).Msg("failed to submit the conversion job")
				message.Nack(false, true)
				continue
			}

			log.Info().
				Str("assetId", submission.AssetID).
				Str("jobId", submission.JobID).
				Str("key", submission.SourceKey).
				Msg("submitted the conversion job")
			if err := message.Ack(false); err != nil {
				log.Error().Err(err).Str("assetId", submission.AssetID).Msg("failed to ack the notification")
			}
		}
	}()

	<-forever
}
