package types

import "time"

type Update struct {
	ID              string        `jsonapi:"primary,updates"`
	StageID         string        `jsonapi:"attribute" json:"stage-id"`
	Index           int           `jsonapi:"attribute" json:"index"`
	Command         string        `jsonapi:"attribute" json:"command"`
	Status          string        `jsonapi:"attribute" json:"status"`
	SourceType      string        `jsonapi:"attribute" json:"source-type"`
	RunID           *string       `jsonapi:"attribute" json:"run-id,omitempty"`
	ResourceCreated int           `jsonapi:"attribute" json:"resource-created"`
	ResourceUpdated int           `jsonapi:"attribute" json:"resource-updated"`
	ResourceDeleted int           `jsonapi:"attribute" json:"resource-deleted"`
	ResourceSame    int           `jsonapi:"attribute" json:"resource-same"`
	Errors          []UpdateError `jsonapi:"attribute" json:"errors"`
	TimeCreated     time.Time     `jsonapi:"attribute" json:"time-created"`
	TimeStarted     *time.Time    `jsonapi:"attribute" json:"time-started,omitempty"`
	TimeCompleted   *time.Time    `jsonapi:"attribute" json:"time-completed,omitempty"`
	TimeCanceled    *time.Time    `jsonapi:"attribute" json:"time-canceled,omitempty"`
	TimeQueued      *time.Time    `jsonapi:"attribute" json:"time-queued,omitempty"`
}

type UpdateError struct {
	URN     *string `json:"urn,omitempty"`
	Message string  `json:"message"`
}

type UpdateCreateOptions struct {
	Type       string  `jsonapi:"primary,updates"`
	Command    string  `jsonapi:"attribute" json:"command"`
	SourceType string  `jsonapi:"attribute" json:"source-type"`
	RunID      *string `jsonapi:"attribute" json:"run-id,omitempty"`
	Queued     bool    `jsonapi:"attribute" json:"queued,omitempty"`
}

type ResourceEvent struct {
	ID          string    `jsonapi:"primary,resource-events"`
	URN         string    `jsonapi:"attribute" json:"urn"`
	Type        string    `jsonapi:"attribute" json:"type"`
	Action      string    `jsonapi:"attribute" json:"action"`
	TimeCreated time.Time `jsonapi:"attribute" json:"time-created"`
}

// ResourceEventOptions is one resource event sent when adding events to an
// update.
type ResourceEventOptions struct {
	URN    string `json:"urn"`
	Type   string `json:"type"`
	Action string `json:"action"`
}

// UpdateCompleteOptions are sent when an update completes.
type UpdateCompleteOptions struct {
	Errors []UpdateError `json:"errors"`
}
