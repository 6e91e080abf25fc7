package ingest

import (
	"context"
	"fmt"
	"time"

	"wxwarehouse/internal/models"
)

// fakeWarehouse is an in-memory Warehouse used across the ingest tests.
type fakeWarehouse struct {
	stations     map[string]*fakeStation
	nextSK       int64
	observations []models.ObservationRow

	upsertCalls int
	insertCalls int

	upsertErr       error
	insertErr       error
	watermarkErr    error
	insertsNothing  bool
	watermarkCalled bool
}

type fakeStation struct {
	sk        int64
	row       models.StationRow
	watermark *time.Time
}

func newFakeWarehouse() *fakeWarehouse {
	return &fakeWarehouse{stations: make(map[string]*fakeStation)}
}

func (w *fakeWarehouse) UpsertStation(_ context.Context, row models.StationRow) (int64, *time.Time, error) {
	w.upsertCalls++
	if w.upsertErr != nil {
		return 0, nil, w.upsertErr
	}

	station, ok := w.stations[row.StationID]
	if !ok {
		w.nextSK++
		station = &fakeStation{sk: w.nextSK}
		w.stations[row.StationID] = station
	}
	station.row = row
	return station.sk, station.watermark, nil
}

func (w *fakeWarehouse) InsertObservations(_ context.Context, rows []models.ObservationRow) ([]time.Time, error) {
	w.insertCalls++
	if w.insertErr != nil {
		return nil, w.insertErr
	}
	if w.insertsNothing {
		return nil, nil
	}

	w.observations = append(w.observations, rows...)
	timestamps := make([]time.Time, len(rows))
	for i, row := range rows {
		timestamps[i] = row.ObservationTimestamp
	}
	return timestamps, nil
}

func (w *fakeWarehouse) UpdateStationWatermark(_ context.Context, stationSK int64, lastObservationAt time.Time) error {
	w.watermarkCalled = true
	if w.watermarkErr != nil {
		return w.watermarkErr
	}
	for _, station := range w.stations {
		if station.sk == stationSK {
			ts := lastObservationAt
			station.watermark = &ts
			return nil
		}
	}
	return fmt.Errorf("unknown station sk %d", stationSK)
}

// watermarkOf returns the stored watermark for a station id.
func (w *fakeWarehouse) watermarkOf(stationID string) *time.Time {
	station, ok := w.stations[stationID]
	if !ok {
		return nil
	}
	return station.watermark
}

// fakeAPI is a canned WeatherAPI that records the requested window.
type fakeAPI struct {
	station    *models.StationResponse
	stationErr error

	features []models.ObservationFeature
	obsErr   error

	lastStart time.Time
	lastEnd   time.Time
}

func (a *fakeAPI) Station(_ context.Context, _ string) (*models.StationResponse, error) {
	if a.stationErr != nil {
		return nil, a.stationErr
	}
	return a.station, nil
}

func (a *fakeAPI) Observations(_ context.Context, _ string, start, end time.Time) ([]models.ObservationFeature, error) {
	a.lastStart = start
	a.lastEnd = end
	if a.obsErr != nil {
		return nil, a.obsErr
	}
	return a.features, nil
}

func floatPtr(v float64) *float64 { return &v }

func feature(timestamp string, temperature, windSpeed, humidity *float64) models.ObservationFeature {
	return models.ObservationFeature{
		Properties: &models.ObservationProperties{
			Timestamp:        timestamp,
			Temperature:      models.Measurement{Value: temperature},
			WindSpeed:        models.Measurement{Value: windSpeed},
			RelativeHumidity: models.Measurement{Value: humidity},
		},
	}
}

func stationPayload(id, name, timezone string, coordinates []float64) *models.StationResponse {
	return &models.StationResponse{
		Properties: models.StationProperties{
			StationIdentifier: id,
			Name:              name,
			TimeZone:          timezone,
		},
		Geometry: models.StationGeometry{Coordinates: coordinates},
	}
}
