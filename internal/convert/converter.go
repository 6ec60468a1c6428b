package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vodmill/internal/config"
	"vodmill/internal/model"
	"vodmill/internal/notify"
)

var (
	ErrNoRecords        = errors.New("notification contains no records")
	ErrIncompleteRecord = errors.New("notification record is missing bucket or key")
	ErrNoEndpoints      = errors.New("transcoding service returned no endpoints")
)

// TranscodeClient is the slice of the MediaConvert API the converter uses.
type TranscodeClient interface {
	DescribeEndpoints(ctx context.Context, params *mediaconvert.DescribeEndpointsInput, optFns ...func(*mediaconvert.Options)) (*mediaconvert.DescribeEndpointsOutput, error)
	CreateJob(ctx context.Context, params *mediaconvert.CreateJobInput, optFns ...func(*mediaconvert.Options)) (*mediaconvert.CreateJobOutput, error)
}

// RecordStore is the slice of the DynamoDB API the converter uses.
type RecordStore interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Converter turns one upload notification into one transcoding job plus one
// bookkeeping record. It holds process-scoped client handles and caches the
// account-specific service endpoint after the first successful lookup.
type Converter struct {
	transcode TranscodeClient
	store     RecordStore
	notifier  *notify.Notifier

	role              string
	destinationBucket string
	table             string

	mu       sync.Mutex
	endpoint string
}

func NewConverter(transcode TranscodeClient, store RecordStore, cfg config.Config, notifier *notify.Notifier) *Converter {
	return &Converter{
		transcode:         transcode,
		store:             store,
		notifier:          notifier,
		role:              cfg.MediaConvertRole,
		destinationBucket: cfg.DestinationBucket,
		table:             cfg.TableName,
	}
}

// Submission reports what a successful Submit created.
type Submission struct {
	AssetID   string
	JobID     string
	SourceKey string
}

// ParseNotification decodes the storage-event envelope carried in a queue
// message body. It rejects incomplete envelopes so that a malformed message
// fails before any service call is made.
func ParseNotification(body []byte) (model.UploadNotification, error) {
	var event events.S3Event
	if err := json.Unmarshal(body, &event); err != nil {
		return model.UploadNotification{}, fmt.Errorf("parse upload notification: %w", err)
	}
	if len(event.Records) == 0 {
		return model.UploadNotification{}, ErrNoRecords
	}
	entity := event.Records[0].S3
	if entity.Bucket.Name == "" || entity.Object.Key == "" {
		return model.UploadNotification{}, ErrIncompleteRecord
	}
	return model.UploadNotification{
		SourceBucket: entity.Bucket.Name,
		SourceKey:    entity.Object.Key,
	}, nil
}

// Submit creates the transcoding job for one notification and records it.
// There is no compensation: a job that was created before the record write
// failed stays orphaned, and the queue's redelivery produces a fresh job
// under a new asset ID.
func (c *Converter) Submit(ctx context.Context, n model.UploadNotification) (*Submission, error) {
	assetID := uuid.NewString()
	source := "s3://" + n.SourceBucket + "/" + n.SourceKey

	settings, err := parseTemplate()
	if err != nil {
		return nil, err
	}
	specialize(settings, source, "s3://"+c.destinationBucket, n.SourceKey, assetID)

	endpoint, err := c.resolveEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	job, err := c.transcode.CreateJob(ctx, &mediaconvert.CreateJobInput{
		Role:         aws.String(c.role),
		Settings:     settings,
		UserMetadata: map[string]string{"assetID": assetID},
	}, func(o *mediaconvert.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	if err != nil {
		return nil, fmt.Errorf("create transcoding job: %w", err)
	}

	item, err := attributevalue.MarshalMap(model.ConversionRecord{
		RecordID: assetID,
		Filename: n.SourceKey,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal bookkeeping record: %w", err)
	}
	if _, err := c.store.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	}); err != nil {
		return nil, fmt.Errorf("write bookkeeping record: %w", err)
	}

	// The job and its record are durable at this point; a notification
	// failure must not trigger a redelivery that would duplicate the job.
	if c.notifier != nil {
		if err := c.notifier.PublishSubmission(ctx, model.SubmissionNotification{
			AssetID:  assetID,
			Filename: n.SourceKey,
			Status:   model.JobStatusSubmitted,
		}); err != nil {
			log.Error().Err(err).Str("assetId", assetID).Msg("failed to publish the submission notification")
		}
	}

	submission := &Submission{AssetID: assetID, SourceKey: n.SourceKey}
	if job.Job != nil && job.Job.Id != nil {
		submission.JobID = *job.Job.Id
	}
	return submission, nil
}

func (c *Converter) resolveEndpoint(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.endpoint != "" {
		return c.endpoint, nil
	}
	out, err := c.transcode.DescribeEndpoints(ctx, &mediaconvert.DescribeEndpointsInput{})
	if err != nil {
		return "", fmt.Errorf("resolve transcoding endpoint: %w", err)
	}
	if len(out.Endpoints) == 0 || out.Endpoints[0].Url == nil {
		return "", ErrNoEndpoints
	}
	c.endpoint = *out.Endpoints[0].Url
	return c.endpoint, nil
}

func basename(key string) string {
	name := path.Base(key)
	ext := path.Ext(name)
	if ext == name {
		// Dotfiles have no extension to strip.
		return name
	}
	return strings.TrimSuffix(name, ext)
}
