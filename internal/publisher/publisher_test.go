package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/pkg/model"
)

// mockJetStream records published messages.
type mockJetStream struct {
	published []*nats.Msg
	fail      bool
}

func (m *mockJetStream) PublishMsg(msg *nats.Msg, _ ...nats.PubOpt) (*nats.PubAck, error) {
	if m.fail {
		return nil, errors.New("mock publish error")
	}
	m.published = append(m.published, msg)
	return &nats.PubAck{Stream: "mock-stream"}, nil
}

func newTestPublisher(fail bool) (*Publisher, *mockJetStream) {
	js := &mockJetStream{fail: fail}
	return &Publisher{
		js:      js,
		subject: DefaultSubject,
		service: "market-radar",
		logger:  zap.NewNop(),
	}, js
}

func testSnapshot() model.Snapshot {
	return model.NewSnapshot([]model.Market{
		{ID: "1", Category: "Crypto"},
		{ID: "2", Category: "General"},
	}, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
}

func TestPublish_Envelope(t *testing.T) {
	pub, js := newTestPublisher(false)
	snap := testSnapshot()

	require.NoError(t, pub.Publish(context.Background(), snap))
	require.Len(t, js.published, 1)

	msg := js.published[0]
	assert.Equal(t, DefaultSubject, msg.Subject)
	assert.Equal(t, model.EventSnapshotRefreshed, msg.Header.Get("event_type"))
	assert.Equal(t, snap.ID.String(), msg.Header.Get("snapshot_id"))
	assert.Equal(t, snap.ID.String(), msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "market-radar", msg.Header.Get("service"))
	assert.Equal(t, "application/json", msg.Header.Get("content_type"))

	var evt model.SnapshotRefreshedEvent
	require.NoError(t, json.Unmarshal(msg.Data, &evt))
	assert.Equal(t, snap.ID, evt.SnapshotID)
	assert.Equal(t, 2, evt.Count)
	assert.Equal(t, model.EventSnapshotRefreshed, evt.EventType)
	assert.True(t, snap.FetchedAt.Equal(evt.FetchedAt))
	assert.Equal(t, evt.ID.String(), msg.Header.Get("event_id"))
	assert.NotEqual(t, evt.ID, evt.SnapshotID)
}

func TestPublish_Failure(t *testing.T) {
	pub, js := newTestPublisher(true)

	err := pub.Publish(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock publish error")
	assert.Empty(t, js.published)
}

func TestPublish_EmptySnapshot(t *testing.T) {
	pub, js := newTestPublisher(false)

	require.NoError(t, pub.Publish(context.Background(), model.NewSnapshot(nil, time.Now())))
	require.Len(t, js.published, 1)

	var evt model.SnapshotRefreshedEvent
	require.NoError(t, json.Unmarshal(js.published[0].Data, &evt))
	assert.Equal(t, 0, evt.Count)
}

func TestHealthCheck_NoConnection(t *testing.T) {
	pub, _ := newTestPublisher(false)
	assert.Error(t, pub.HealthCheck(context.Background()))
	pub.Close() // nil connection is a no-op
}
