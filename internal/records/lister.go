package records

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"vodmill/internal/config"
	"vodmill/internal/model"
	"vodmill/internal/respond"
)

// RecordScanner is the slice of the DynamoDB API the lister uses.
type RecordScanner interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Lister reads every bookkeeping record back out of the table.
type Lister struct {
	store RecordScanner
	table string
}

func NewLister(store RecordScanner, cfg config.Config) *Lister {
	return &Lister{store: store, table: cfg.TableName}
}

// List scans the whole table. The store caps each response at 1 MB, so the
// scan is driven by LastEvaluatedKey and every page is appended to the
// result; returning early or keeping only the last page would drop records.
func (l *Lister) List(ctx context.Context) ([]model.ConversionRecord, error) {
	records := []model.ConversionRecord{}
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := l.store.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(l.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan bookkeeping table: %w", err)
		}
		var page []model.ConversionRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal bookkeeping records: %w", err)
		}
		records = append(records, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Handle implements the record-listing HTTP contract: a JSON array of every
// stored record.
func (l *Lister) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	records, err := l.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list the bookkeeping records")
		return respond.Error(http.StatusInternalServerError, err), nil
	}
	return respond.JSON(http.StatusOK, records), nil
}
