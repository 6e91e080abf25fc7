package ingest

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"wxwarehouse/internal/models"
)

// bootstrapWindow is how far back the first fetch for a station reaches
// when no watermark exists yet.
const bootstrapWindow = 7 * 24 * time.Hour

// ObservationProcessor fetches the observations a station gained since its
// watermark, extracts and validates them, loads them in one batch and
// advances the watermark.
type ObservationProcessor struct {
	db  Warehouse
	api WeatherAPI
	log *zap.SugaredLogger
}

// NewObservationProcessor creates a new ObservationProcessor.
func NewObservationProcessor(db Warehouse, api WeatherAPI, log *zap.SugaredLogger) *ObservationProcessor {
	return &ObservationProcessor{db: db, api: api, log: log}
}

// ProcessObservations runs one ingestion pass for a resolved station.
// Returns true when at least one observation row was loaded.
func (p *ObservationProcessor) ProcessObservations(ctx context.Context, stationID string, stationSK int64, lastObservation *time.Time) (bool, error) {
	start, end := fetchWindow(time.Now().UTC(), lastObservation)
	if lastObservation == nil {
		p.log.Info("No last observation timestamp recorded, fetching observations from the last 7 days.")
	}

	features, err := p.api.Observations(ctx, stationID, start, end)
	if err != nil {
		return false, err
	}

	if len(features) == 0 {
		p.log.Infof("No observations found for station %s", stationID)
		return false, nil
	}

	rows, err := p.extractObservationsFields(features, stationSK)
	if err != nil {
		return false, err
	}

	return p.loadObservations(ctx, rows, stationSK)
}

// fetchWindow computes the observation fetch bounds against now. With no
// watermark the window is the bootstrap lookback; otherwise it starts one
// second past the watermark so the boundary observation is never
// re-fetched.
func fetchWindow(now time.Time, lastObservation *time.Time) (start, end time.Time) {
	if lastObservation == nil {
		return now.Add(-bootstrapWindow), now
	}
	return lastObservation.Add(time.Second), now
}

func (p *ObservationProcessor) extractObservationsFields(features []models.ObservationFeature, stationSK int64) ([]models.ObservationRow, error) {
	rows := make([]models.ObservationRow, 0, len(features))
	for _, feature := range features {
		row, err := p.extractObservationFields(feature, stationSK)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

// extractObservationFields maps one raw feature onto a fact row. The
// properties container and its timestamp are mandatory and abort the
// whole batch; the three metric values are soft failures stored as NULL.
func (p *ObservationProcessor) extractObservationFields(feature models.ObservationFeature, stationSK int64) (*models.ObservationRow, error) {
	properties := feature.Properties
	if properties == nil {
		p.log.Error("Mandatory 'properties' field is missing.")
		return nil, fmt.Errorf("properties: %w", ErrMissingMandatoryField)
	}

	if properties.Timestamp == "" {
		p.log.Error("Mandatory 'timestamp' field is missing in observation.")
		return nil, fmt.Errorf("timestamp: %w", ErrMissingMandatoryField)
	}

	timestamp, err := time.Parse(time.RFC3339, properties.Timestamp)
	if err != nil {
		p.log.Errorf("Observation timestamp %q is not RFC3339.", properties.Timestamp)
		return nil, fmt.Errorf("timestamp %q: %w", properties.Timestamp, ErrMissingMandatoryField)
	}

	return &models.ObservationRow{
		StationSK:            stationSK,
		ObservationTimestamp: timestamp,
		Temperature:          p.roundedValue(properties.Temperature, "temperature", stationSK),
		WindSpeed:            p.roundedValue(properties.WindSpeed, "windSpeed", stationSK),
		Humidity:             p.roundedValue(properties.RelativeHumidity, "relativeHumidity", stationSK),
	}, nil
}

// roundedValue extracts a nullable metric, rounded to 2 decimal places.
func (p *ObservationProcessor) roundedValue(m models.Measurement, field string, stationSK int64) *float64 {
	if m.Value == nil {
		p.log.Warnf("Optional field '%s' is missing for station %d.", field, stationSK)
		return nil
	}
	rounded := math.Round(*m.Value*100) / 100
	return &rounded
}

// loadObservations submits the batch as one insert and, when storage
// accepted rows, advances the watermark to the maximum inserted timestamp.
// The two writes commit independently; see internal/database.
func (p *ObservationProcessor) loadObservations(ctx context.Context, rows []models.ObservationRow, stationSK int64) (bool, error) {
	insertedTimestamps, err := p.db.InsertObservations(ctx, rows)
	if err != nil {
		return false, err
	}

	if len(insertedTimestamps) == 0 {
		p.log.Debugf("No observations were inserted for station %d", stationSK)
		return false, nil
	}

	lastTimestamp := insertedTimestamps[0]
	for _, ts := range insertedTimestamps[1:] {
		if ts.After(lastTimestamp) {
			lastTimestamp = ts
		}
	}

	if err := p.db.UpdateStationWatermark(ctx, stationSK, lastTimestamp); err != nil {
		return false, err
	}

	p.log.Infof("Loaded %d observations for station %d. Last timestamp: %s",
		len(insertedTimestamps), stationSK, lastTimestamp.Format(time.RFC3339))
	return true, nil
}
