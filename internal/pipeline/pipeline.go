package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wxwarehouse/internal/api"
	"wxwarehouse/internal/database"
	"wxwarehouse/internal/events"
	"wxwarehouse/internal/ingest"
	"wxwarehouse/internal/insights"
)

// Pipeline sequences one ingestion run for a single station: resolve the
// station, ingest its new observations, report insights, publish the run
// summary. Any hard failure aborts the run; resource lifecycle (API
// client, pool, Redis) belongs to the caller.
type Pipeline struct {
	stations     *ingest.StationProcessor
	observations *ingest.ObservationProcessor
	reporter     *insights.Reporter
	publisher    *events.Publisher
	log          *zap.SugaredLogger
}

// New wires the pipeline components. publisher may be nil when event
// publishing is not configured.
func New(db *database.DB, client *api.Client, publisher *events.Publisher, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		stations:     ingest.NewStationProcessor(db, client, log),
		observations: ingest.NewObservationProcessor(db, client, log),
		reporter:     insights.NewReporter(db, log),
		publisher:    publisher,
		log:          log,
	}
}

// Run processes one station end to end.
func (p *Pipeline) Run(ctx context.Context, stationID string) error {
	p.log.Infof("Processing station: %s", stationID)

	stationSK, lastObservation, err := p.stations.ProcessStation(ctx, stationID)
	if err != nil {
		return err
	}
	p.log.Infof("Station processed. SK: %d, Last observation: %s", stationSK, formatWatermark(lastObservation))

	inserted, err := p.observations.ProcessObservations(ctx, stationID, stationSK, lastObservation)
	if err != nil {
		return err
	}

	p.log.Info("Weather data pipeline completed successfully")

	if err := p.reporter.Run(ctx, stationID); err != nil {
		return err
	}

	p.publisher.Publish(ctx, events.IngestSummary{
		StationID:   stationID,
		StationSK:   stationSK,
		Inserted:    inserted,
		Watermark:   lastObservation,
		CompletedAt: time.Now().UTC(),
	})

	return nil
}

func formatWatermark(watermark *time.Time) string {
	if watermark == nil {
		return "none"
	}
	return watermark.Format(time.RFC3339)
}
