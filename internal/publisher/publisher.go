package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/metrics"
	"github.com/Checker-Finance/market-radar/pkg/model"
)

// DefaultSubject carries SnapshotRefreshedEvent envelopes.
const DefaultSubject = "evt.markets.snapshot_refreshed.v1"

// jetStream is the slice of nats.JetStreamContext the publisher uses.
type jetStream interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher announces refreshed snapshots on NATS JetStream.
type Publisher struct {
	nc      *nats.Conn
	js      jetStream
	subject string
	service string
	logger  *zap.Logger
}

// New creates a Publisher over nc with JetStream enabled.
func New(nc *nats.Conn, subject, service string, logger *zap.Logger) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
		logger:  logger,
	}, nil
}

// Publish emits a snapshot_refreshed event for snap. It satisfies refresh.Sink.
func (p *Publisher) Publish(ctx context.Context, snap model.Snapshot) error {
	evt := model.NewSnapshotRefreshedEvent(snap, time.Now())

	data, err := json.Marshal(evt)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":   []string{evt.EventType},
			"event_id":     []string{evt.ID.String()},
			"snapshot_id":  []string{evt.SnapshotID.String()},
			"service":      []string{p.service},
			"content_type": []string{"application/json"},
		},
	}
	// JetStream de-duplicates on this header within its window
	msg.Header.Set(nats.MsgIdHdr, evt.SnapshotID.String())

	start := time.Now()
	_, err = p.js.PublishMsg(msg, nats.Context(ctx))
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, p.subject)

	if err != nil {
		p.logger.Error("publisher.publish_failed",
			zap.String("subject", p.subject),
			zap.String("snapshot_id", evt.SnapshotID.String()),
			zap.Error(err))
		metrics.IncNATSMessage(p.subject, "error")
		return err
	}

	p.logger.Info("publisher.publish_success",
		zap.String("subject", p.subject),
		zap.String("snapshot_id", evt.SnapshotID.String()),
		zap.Int("count", evt.Count))
	metrics.IncNATSMessage(p.subject, "ok")
	return nil
}

// HealthCheck reports whether the NATS connection is up.
func (p *Publisher) HealthCheck(context.Context) error {
	if p.nc == nil || !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
