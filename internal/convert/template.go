package convert

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	mctypes "github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"
)

// The job template ships inside the binary. It is parsed fresh for every
// submission so that specializing one job can never leak into another when
// the runtime reuses a warm process.
//
//go:embed job.json
var jobTemplate []byte

// Output group positions are fixed by the template.
const (
	groupStreaming  = 0
	groupMezzanine  = 1
	groupThumbnails = 2
)

// Kind names become path components in the output destinations.
const (
	kindStreaming  = "HLS"
	kindMezzanine  = "MP4"
	kindThumbnails = "Thumbnails"
)

func parseTemplate() (*mctypes.JobSettings, error) {
	var settings mctypes.JobSettings
	if err := json.Unmarshal(jobTemplate, &settings); err != nil {
		return nil, fmt.Errorf("parse job template: %w", err)
	}
	if len(settings.Inputs) != 1 {
		return nil, fmt.Errorf("job template: expected 1 input, got %d", len(settings.Inputs))
	}
	if len(settings.OutputGroups) != 3 {
		return nil, fmt.Errorf("job template: expected 3 output groups, got %d", len(settings.OutputGroups))
	}
	for i, group := range settings.OutputGroups {
		if group.OutputGroupSettings == nil {
			return nil, fmt.Errorf("job template: output group %d has no settings", i)
		}
	}
	if settings.OutputGroups[groupStreaming].OutputGroupSettings.HlsGroupSettings == nil {
		return nil, fmt.Errorf("job template: output group %d is not an HLS group", groupStreaming)
	}
	for _, i := range []int{groupMezzanine, groupThumbnails} {
		if settings.OutputGroups[i].OutputGroupSettings.FileGroupSettings == nil {
			return nil, fmt.Errorf("job template: output group %d is not a file group", i)
		}
	}
	return &settings, nil
}

// specialize points the parsed template at one upload: the single input
// reads the source object and the three output groups write under the
// per-asset prefix in the destination bucket.
func specialize(settings *mctypes.JobSettings, source, destinationRoot, sourceKey, assetID string) {
	base := basename(sourceKey)
	settings.Inputs[0].FileInput = aws.String(source)
	settings.OutputGroups[groupStreaming].OutputGroupSettings.HlsGroupSettings.Destination =
		aws.String(destination(destinationRoot, sourceKey, assetID, kindStreaming, base))
	settings.OutputGroups[groupMezzanine].OutputGroupSettings.FileGroupSettings.Destination =
		aws.String(destination(destinationRoot, sourceKey, assetID, kindMezzanine, base))
	settings.OutputGroups[groupThumbnails].OutputGroupSettings.FileGroupSettings.Destination =
		aws.String(destination(destinationRoot, sourceKey, assetID, kindThumbnails, base))
}

func destination(root, sourceKey, assetID, kind, base string) string {
	return root + "/" + sourceKey + "/assets/" + assetID + "/" + kind + "/" + base
}
