package pubsub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleProjectID   = errors.New("URL host must be a valid GCP project ID")
	ErrInvalidGooglePubSubTopic = errors.New("URL path must be a valid GCP pubsub topic ID")

	// gcppubsub://<project_id>/<topic_name>[?endpoint=<host:port>]
	gcpPubSubScheme = "gcppubsub"

	gcpProjectIDRegex   = regexp.MustCompile(`^[a-z][-a-z0-9]{4,28}[a-z0-9]$`)
	gcpPubSubTopicRegex = regexp.MustCompile(`^[a-zA-Z][-a-zA-Z0-9]{2,254}$`)
)

type (
	// gcpSink publishes events to a Google Pub/Sub topic. Events carry the
	// workspace as an attribute, which subscribers can filter on.
	gcpSink struct {
		client    *pubsub.Client
		publisher publisher
		topic     string
	}

	publisher interface {
		Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
	}
)

// parseGCPURL returns the project and topic named by a gcppubsub URL.
func parseGCPURL(u *url.URL) (string, string, error) {
	if !gcpProjectIDRegex.MatchString(u.Host) {
		return "", "", ErrInvalidGoogleProjectID
	}
	if len(u.Path) == 0 || u.Path[0] != '/' || !gcpPubSubTopicRegex.MatchString(u.Path[1:]) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidGooglePubSubTopic, u.Path)
	}
	return u.Host, u.Path[1:], nil
}

func newGCPSink(u *url.URL) (*gcpSink, error) {
	project, topic, err := parseGCPURL(u)
	if err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	if endpoint := u.Query().Get("endpoint"); endpoint != "" {
		// e.g. a local emulator
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := pubsub.NewClient(context.Background(), project, opts...)
	if err != nil {
		return nil, err
	}
	return &gcpSink{
		client:    client,
		publisher: client.Publisher(topic),
		topic:     topic,
	}, nil
}

func (s *gcpSink) send(ctx context.Context, event Event, payload []byte) error {
	res := s.publisher.Publish(ctx, &pubsub.Message{
		Attributes: map[string]string{
			"console/v1/type":         string(event.Type),
			"console/v1/workspace.id": event.WorkspaceID.String(),
		},
		Data: payload,
	})
	_, err := res.Get(ctx)
	return err
}

func (s *gcpSink) String() string { return "gcppubsub:" + s.topic }

func (s *gcpSink) Close() error { return s.client.Close() }
