package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wxwarehouse/internal/models"
)

// WeatherAPI is the slice of the weather service the ingestion core needs.
type WeatherAPI interface {
	Station(ctx context.Context, stationID string) (*models.StationResponse, error)
	Observations(ctx context.Context, stationID string, start, end time.Time) ([]models.ObservationFeature, error)
}

// Warehouse is the persistence port of the ingestion core. Every call
// commits its own unit of work before returning. UpsertStation keys on
// station_id, refreshes the mutable attributes on conflict and must never
// touch the watermark; implementations report a violated
// one-row-returned invariant with an error matching ErrNoRowReturned.
type Warehouse interface {
	UpsertStation(ctx context.Context, row models.StationRow) (stationSK int64, lastObservationAt *time.Time, err error)
	InsertObservations(ctx context.Context, rows []models.ObservationRow) (insertedTimestamps []time.Time, err error)
	UpdateStationWatermark(ctx context.Context, stationSK int64, lastObservationAt time.Time) error
}

// StationProcessor resolves a station identifier to its surrogate key and
// current observation watermark, creating or refreshing the dimension row.
type StationProcessor struct {
	db  Warehouse
	api WeatherAPI
	log *zap.SugaredLogger
}

// NewStationProcessor creates a new StationProcessor.
func NewStationProcessor(db Warehouse, api WeatherAPI, log *zap.SugaredLogger) *StationProcessor {
	return &StationProcessor{db: db, api: api, log: log}
}

// ProcessStation fetches, extracts and upserts one station, returning its
// surrogate key and last observation timestamp (nil for a new station).
func (p *StationProcessor) ProcessStation(ctx context.Context, stationID string) (int64, *time.Time, error) {
	raw, err := p.api.Station(ctx, stationID)
	if err != nil {
		return 0, nil, err
	}

	row, err := p.extractStationFields(raw)
	if err != nil {
		return 0, nil, err
	}

	return p.db.UpsertStation(ctx, *row)
}

// extractStationFields maps a raw station payload onto a dimension row.
// The station identifier is mandatory; name, timezone and coordinates are
// soft failures stored as NULL.
func (p *StationProcessor) extractStationFields(station *models.StationResponse) (*models.StationRow, error) {
	stationID := station.Properties.StationIdentifier
	if stationID == "" {
		p.log.Error("Mandatory 'stationIdentifier' is missing.")
		return nil, fmt.Errorf("stationIdentifier: %w", ErrMissingMandatoryField)
	}

	row := &models.StationRow{StationID: stationID}

	if station.Properties.Name != "" {
		name := station.Properties.Name
		row.StationName = &name
	}
	if station.Properties.TimeZone != "" {
		tz := station.Properties.TimeZone
		row.StationTimezone = &tz
	}
	if row.StationName == nil || row.StationTimezone == nil {
		p.log.Warnf("Optional field 'name' or 'timeZone' is missing for station %s.", stationID)
	}

	if coords := station.Geometry.Coordinates; len(coords) >= 2 {
		longitude, latitude := coords[0], coords[1]
		row.Longitude = &longitude
		row.Latitude = &latitude
	} else {
		p.log.Warnf("Coordinates are missing or incomplete for station %s.", stationID)
	}

	return row, nil
}
