package types

import "time"

type AppRepo struct {
	ID             string     `jsonapi:"primary,app-repos"`
	AppID          string     `jsonapi:"attribute" json:"app-id"`
	Type           string     `jsonapi:"attribute" json:"type"`
	RepoID         int64      `jsonapi:"attribute" json:"repo-id"`
	BranchPattern  string     `jsonapi:"attribute" json:"branch-pattern"`
	StageName      string     `jsonapi:"attribute" json:"stage-name"`
	LastEventError *string    `jsonapi:"attribute" json:"last-event-error,omitempty"`
	TimeLastEvent  *time.Time `jsonapi:"attribute" json:"time-last-event,omitempty"`
}

type AppRepoConnectOptions struct {
	Type          string `jsonapi:"primary,app-repos"`
	RepoID        int64  `jsonapi:"attribute" json:"repo-id"`
	BranchPattern string `jsonapi:"attribute" json:"branch-pattern,omitempty"`
	StageName     string `jsonapi:"attribute" json:"stage-name,omitempty"`
}
