package presign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"vodmill/internal/config"
	"vodmill/internal/model"
	"vodmill/internal/respond"
)

// LinkTTL bounds how long an issued upload link stays usable. Uploads are
// expected to start immediately, so the window is kept short.
const LinkTTL = 60 * time.Second

var ErrMissingFile = errors.New("request body has no file name")

// Presigner is the slice of the S3 presign API the issuer uses.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Issuer hands out time-limited write URLs into the source bucket.
type Issuer struct {
	presigner Presigner
	bucket    string
}

func NewIssuer(presigner Presigner, cfg config.Config) *Issuer {
	return &Issuer{presigner: presigner, bucket: cfg.SourceBucket}
}

// Issue returns a presigned PUT URL for the named object. The intended name
// is recorded as object metadata so the upload notification can be matched
// back to the request that asked for it.
func (i *Issuer) Issue(ctx context.Context, name string) (string, error) {
	request, err := i.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(i.bucket),
		Key:      aws.String(name),
		Metadata: map[string]string{"record_name": name},
	}, s3.WithPresignExpires(LinkTTL))
	if err != nil {
		return "", fmt.Errorf("presign upload for %q: %w", name, err)
	}
	return request.URL, nil
}

// Handle implements the upload-link HTTP contract:
// {"file": name} in, {"url": link} out.
func (i *Issuer) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var body model.PresignRequest
	if err := json.Unmarshal([]byte(request.Body), &body); err != nil {
		log.Error().Err(err).Msg("failed to parse the presign request")
		return respond.Error(http.StatusBadRequest, err), nil
	}
	if body.File == "" {
		return respond.Error(http.StatusBadRequest, ErrMissingFile), nil
	}

	url, err := i.Issue(ctx, body.File)
	if err != nil {
		log.Error().Err(err).Str("file", body.File).Msg("failed to issue the upload link")
		return respond.Error(http.StatusInternalServerError, err), nil
	}
	return respond.JSON(http.StatusOK, model.PresignResponse{URL: url}), nil
}
