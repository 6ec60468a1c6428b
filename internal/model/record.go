package model

// ConversionRecord is one row in the bookkeeping table, written when a
// conversion job is submitted and read back in bulk by the record lister.
// The attribute names are part of the wire contract consumed by clients.
type ConversionRecord struct {
	// RecordID is the asset identifier minted for the submitted job.
	RecordID string `dynamodbav:"RecordId" json:"RecordId"`
	// Filename is the object key of the uploaded source video.
	Filename string `dynamodbav:"filename" json:"filename"`
}
