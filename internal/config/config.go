package config

import "os"

// Config is the environment surface shared by the pipeline binaries. Each
// binary reads it once at startup; not every field is set in every
// deployment (the presign function has no table, the authorizer no bucket).
type Config struct {
	// Region is the deployment region for all AWS clients.
	Region string
	// SourceBucket receives client uploads via presigned URLs.
	SourceBucket string
	// DestinationBucket is the root for all converted output.
	DestinationBucket string
	// MediaConvertRole is the IAM role passed to created jobs.
	MediaConvertRole string
	// TableName is the bookkeeping table for submitted jobs.
	TableName string
	// UserPoolID and AppClientID identify the Cognito pool that issued
	// the bearer tokens the access gate verifies.
	UserPoolID  string
	AppClientID string
}

func FromEnv() Config {
	return Config{
		Region:            os.Getenv("REGION"),
		SourceBucket:      os.Getenv("SRC_BUCKET"),
		DestinationBucket: os.Getenv("DESTINATION_BUCKET"),
		MediaConvertRole:  os.Getenv("MEDIACONVERT_ROLE"),
		TableName:         os.Getenv("TABLE_NAME"),
		UserPoolID:        os.Getenv("USER_POOL_ID"),
		AppClientID:       os.Getenv("APP_CLIENT_ID"),
	}
}
