package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// IngestSummary is the event published after a pipeline run so downstream
// consumers (alerting, freshness dashboards) can react without polling the
// warehouse.
type IngestSummary struct {
	StationID string `json:"station_id"`
	StationSK int64  `json:"station_sk"`
	Inserted  bool   `json:"inserted"`
	// Watermark the run started from; nil on a station's first run.
	Watermark   *time.Time `json:"watermark,omitempty"`
	CompletedAt time.Time  `json:"completed_at"`
}

// Publisher appends ingest summaries to a Redis stream. A nil *Publisher
// is valid and publishes nothing, so callers need no enabled checks.
type Publisher struct {
	client *redis.Client
	stream string
	log    *zap.SugaredLogger
}

// NewPublisher creates a stream publisher for the given Redis instance.
func NewPublisher(addr, password string, db int, stream string, log *zap.SugaredLogger) *Publisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Publisher{client: client, stream: stream, log: log}
}

// Publish serializes the summary and appends it to the stream. Failures
// are logged and swallowed: event delivery is best-effort and must never
// fail a run whose data is already durable.
func (p *Publisher) Publish(ctx context.Context, summary IngestSummary) {
	if p == nil {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		p.log.Warnf("Failed to serialize ingest summary for %s: %v", summary.StationID, err)
		return
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		p.log.Warnf("Failed to publish ingest summary for %s: %v", summary.StationID, err)
		return
	}

	p.log.Infof("Published ingest summary for %s to stream %s", summary.StationID, p.stream)
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}
