package run

import "fmt"

const shortSHALength = 7

type (
	// Trigger describes the git push that triggered a run.
	Trigger struct {
		Source string        `json:"source"`
		Repo   TriggerRepo   `json:"repo"`
		Branch string        `json:"branch"`
		Commit TriggerCommit `json:"commit"`
		Sender TriggerSender `json:"sender"`
	}

	TriggerRepo struct {
		ID    int64  `json:"id"`
		Owner string `json:"owner"`
		Repo  string `json:"repo"`
	}

	TriggerCommit struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}

	TriggerSender struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
)

// ShortSHA returns the abbreviated commit sha.
func (t Trigger) ShortSHA() string {
	if len(t.Commit.ID) <= shortSHALength {
		return t.Commit.ID
	}
	return t.Commit.ID[:shortSHALength]
}

// AvatarURL returns the URL of the github avatar of the sender.
func (t Trigger) AvatarURL() string {
	return fmt.Sprintf("https://avatars.githubusercontent.com/u/%d?s=48&v=4", t.Sender.ID)
}
