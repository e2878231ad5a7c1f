package types

import "time"

type Issue struct {
	ID           string     `jsonapi:"primary,issues"`
	StageID      string     `jsonapi:"attribute" json:"stage-id"`
	Group        string     `jsonapi:"attribute" json:"group"`
	Error        string     `jsonapi:"attribute" json:"error"`
	Message      string     `jsonapi:"attribute" json:"message"`
	LogGroup     string     `jsonapi:"attribute" json:"log-group"`
	Count        int        `jsonapi:"attribute" json:"count"`
	TimeSeen     time.Time  `jsonapi:"attribute" json:"time-seen"`
	TimeResolved *time.Time `jsonapi:"attribute" json:"time-resolved,omitempty"`
	TimeCreated  time.Time  `jsonapi:"attribute" json:"time-created"`
}

// LogGroupRegisterOptions maps a log group to a stage.
type LogGroupRegisterOptions struct {
	LogGroup string `json:"logGroup"`
	StageID  string `json:"stageId"`
}

// IssueList is a page of issues.
type IssueList struct {
	*Pagination
	Items []*Issue
}

// IngestBatch is a batch of log stream records, in the shape delivered by a
// managed stream.
type IngestBatch struct {
	Records []IngestRecord `json:"Records"`
}

type IngestRecord struct {
	EventID string        `json:"eventID"`
	Kinesis IngestPayload `json:"kinesis"`
}

type IngestPayload struct {
	// Data is gzipped JSON, base64 encoded on the wire.
	Data []byte `json:"data"`
	// ApproximateArrivalTimestamp is in seconds since the epoch.
	ApproximateArrivalTimestamp float64 `json:"approximateArrivalTimestamp"`
}
