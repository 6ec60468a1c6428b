package model_test

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"vodmill/internal/model"
)

// The attribute and JSON key casing is consumed by existing clients and the
// already-populated table, so it is pinned here.
func TestConversionRecordWireNames(t *testing.T) {
	record := model.ConversionRecord{RecordID: "asset-1", Filename: "videos/clip1.mp4"}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		t.Fatalf("MarshalMap: %v", err)
	}
	for _, key := range []string{"RecordId", "filename"} {
		if _, ok := av[key]; !ok {
			t.Errorf("expected attribute %q not found", key)
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal to map: %v", err)
	}
	for _, key := range []string{"RecordId", "filename"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected JSON key %q not found", key)
		}
	}
}
