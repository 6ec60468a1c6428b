package model

// UploadNotification identifies one newly written object in the source
// bucket. One notification produces exactly one conversion job.
type UploadNotification struct {
	// SourceBucket is the bucket the client uploaded into.
	SourceBucket string `json:"bucket"`
	// SourceKey is the object key of the uploaded video.
	SourceKey string `json:"key"`
}

// JobStatus is published on the notification channel alongside an asset ID.
type JobStatus string

const (
	JobStatusSubmitted JobStatus = "submitted"
)

// SubmissionNotification is the payload published to the Redis channel
// after a conversion job has been handed to the transcoding service.
type SubmissionNotification struct {
	AssetID  string    `json:"asset_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
}
