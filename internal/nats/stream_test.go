package nats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/athena-chat/athena/internal/model"
	"github.com/athena-chat/athena/pkg/logger"
)

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.subject = subject
	p.data = data
	return &jetstream.PubAck{Stream: StreamName, Sequence: 7}, nil
}

func TestEventSubject(t *testing.T) {
	require.Equal(t, "athena.events.conversation_created.1700000000", EventSubject(model.EventConversationCreated, "1700000000"))
	require.Equal(t, "athena.events.persona_saved._", EventSubject(model.EventPersonaSaved, ""))
	require.Equal(t, "athena.events.conversation_renamed.my_trip_to_Rome__v2_", EventSubject(model.EventConversationRenamed, "my trip.to Rome *v2>"))
}

func TestPublishEvent(t *testing.T) {
	pub := &fakePublisher{}
	m := NewStreamManagerWithPublisher(pub)

	event := &model.Event{
		ID:             "evt-1",
		Type:           model.EventMessageAppended,
		ConversationID: "c1",
		CreatedAt:      time.Unix(0, 0).UTC(),
	}
	seq, err := m.PublishEvent(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, uint64(7), seq)
	require.Equal(t, "athena.events.message_appended.c1", pub.subject)

	var decoded model.Event
	require.NoError(t, json.Unmarshal(pub.data, &decoded))
	require.Equal(t, *event, decoded)
}

func TestPublishEventError(t *testing.T) {
	m := NewStreamManagerWithPublisher(&fakePublisher{err: errors.New("no responders")})

	_, err := m.PublishEvent(context.Background(), &model.Event{Type: model.EventConversationDeleted})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no responders")
}

func TestConnectOptions(t *testing.T) {
	log := logger.NewNop()

	plain := connectOptions(Config{URL: "nats://localhost:4222"}, log)
	secured := connectOptions(Config{
		URL:      "nats://localhost:4222",
		CAFile:   "ca.pem",
		CertFile: "cert.pem",
		KeyFile:  "key.pem",
		Token:    "secret",
	}, log)
	require.Len(t, secured, len(plain)+3)

	var opts nats.Options
	for _, opt := range connectOptions(Config{Token: "secret"}, log) {
		require.NoError(t, opt(&opts))
	}
	require.Equal(t, clientName, opts.Name)
	require.Equal(t, "secret", opts.Token)
	require.Equal(t, -1, opts.MaxReconnect)
	require.False(t, opts.Secure)
}

func TestNilClientIsNotConnected(t *testing.T) {
	var c *Client
	require.False(t, c.IsConnected())
	c.Close()
}
