package types

import "time"

type Run struct {
	ID            string     `jsonapi:"primary,runs"`
	StageID       string     `jsonapi:"attribute" json:"stage-id"`
	Branch        string     `jsonapi:"attribute" json:"branch"`
	CommitID      string     `jsonapi:"attribute" json:"commit-id"`
	CommitMessage string     `jsonapi:"attribute" json:"commit-message"`
	Status        string     `jsonapi:"attribute" json:"status"`
	Error         *string    `jsonapi:"attribute" json:"error,omitempty"`
	TimeCreated   time.Time  `jsonapi:"attribute" json:"time-created"`
	TimeStarted   *time.Time `jsonapi:"attribute" json:"time-started,omitempty"`
	TimeCompleted *time.Time `jsonapi:"attribute" json:"time-completed,omitempty"`
	LogGroup      *string    `jsonapi:"attribute" json:"log-group,omitempty"`
	LogStream     *string    `jsonapi:"attribute" json:"log-stream,omitempty"`
}

// RunStartedOptions are sent by a runner when it starts a run.
type RunStartedOptions struct {
	AWSRequestID string `json:"awsRequestId"`
	LogGroup     string `json:"logGroup"`
	LogStream    string `json:"logStream"`
}

// RunCompletedOptions are sent by a runner when it finishes a run.
type RunCompletedOptions struct {
	Error *string `json:"error,omitempty"`
}

// RunList is a page of runs.
type RunList struct {
	*Pagination
	Items []*Run
}
