package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func TestProcessStation_CreatesStation(t *testing.T) {
	warehouse := newFakeWarehouse()
	api := &fakeAPI{station: stationPayload("KSFO", "San Francisco Intl", "America/Los_Angeles", []float64{-122.3650, 37.6197})}
	processor := NewStationProcessor(warehouse, api, zap.NewNop().Sugar())

	stationSK, lastObservation, err := processor.ProcessStation(context.Background(), "KSFO")
	if err != nil {
		t.Fatalf("ProcessStation() error = %v", err)
	}

	if stationSK != 1 {
		t.Errorf("Expected station sk 1, got %d", stationSK)
	}

	if lastObservation != nil {
		t.Errorf("Expected nil watermark for new station, got %v", lastObservation)
	}

	stored := warehouse.stations["KSFO"].row
	if stored.StationName == nil || *stored.StationName != "San Francisco Intl" {
		t.Errorf("Expected station name stored, got %v", stored.StationName)
	}

	if stored.StationTimezone == nil || *stored.StationTimezone != "America/Los_Angeles" {
		t.Errorf("Expected station timezone stored, got %v", stored.StationTimezone)
	}

	if stored.Longitude == nil || *stored.Longitude != -122.3650 {
		t.Errorf("Expected longitude -122.3650, got %v", stored.Longitude)
	}

	if stored.Latitude == nil || *stored.Latitude != 37.6197 {
		t.Errorf("Expected latitude 37.6197, got %v", stored.Latitude)
	}
}

func TestProcessStation_Idempotent(t *testing.T) {
	warehouse := newFakeWarehouse()
	api := &fakeAPI{station: stationPayload("KSFO", "San Francisco Intl", "America/Los_Angeles", []float64{-122.3650, 37.6197})}
	processor := NewStationProcessor(warehouse, api, zap.NewNop().Sugar())

	firstSK, _, err := processor.ProcessStation(context.Background(), "KSFO")
	if err != nil {
		t.Fatalf("ProcessStation() first call error = %v", err)
	}

	secondSK, _, err := processor.ProcessStation(context.Background(), "KSFO")
	if err != nil {
		t.Fatalf("ProcessStation() second call error = %v", err)
	}

	if firstSK != secondSK {
		t.Errorf("Expected same sk on repeat resolution, got %d then %d", firstSK, secondSK)
	}

	if warehouse.upsertCalls != 2 {
		t.Errorf("Expected 2 upsert calls, got %d", warehouse.upsertCalls)
	}
}

func TestProcessStation_MissingIdentifier(t *testing.T) {
	warehouse := newFakeWarehouse()
	api := &fakeAPI{station: stationPayload("", "Nameless", "UTC", []float64{0, 0})}
	processor := NewStationProcessor(warehouse, api, zap.NewNop().Sugar())

	_, _, err := processor.ProcessStation(context.Background(), "KSFO")
	if !errors.Is(err, ErrMissingMandatoryField) {
		t.Fatalf("Expected ErrMissingMandatoryField, got %v", err)
	}

	if warehouse.upsertCalls != 0 {
		t.Errorf("Expected no database write after hard failure, got %d upserts", warehouse.upsertCalls)
	}
}

func TestProcessStation_OptionalFieldsNull(t *testing.T) {
	tests := []struct {
		name    string
		station func() *fakeAPI
		check   func(t *testing.T, warehouse *fakeWarehouse)
	}{
		{
			name: "missing name and timezone",
			station: func() *fakeAPI {
				return &fakeAPI{station: stationPayload("KSFO", "", "", []float64{-122.3650, 37.6197})}
			},
			check: func(t *testing.T, warehouse *fakeWarehouse) {
				row := warehouse.stations["KSFO"].row
				if row.StationName != nil {
					t.Errorf("Expected nil station name, got %v", *row.StationName)
				}
				if row.StationTimezone != nil {
					t.Errorf("Expected nil station timezone, got %v", *row.StationTimezone)
				}
			},
		},
		{
			name: "missing coordinates",
			station: func() *fakeAPI {
				return &fakeAPI{station: stationPayload("KSFO", "San Francisco Intl", "America/Los_Angeles", nil)}
			},
			check: func(t *testing.T, warehouse *fakeWarehouse) {
				row := warehouse.stations["KSFO"].row
				if row.Longitude != nil || row.Latitude != nil {
					t.Error("Expected nil coordinates")
				}
			},
		},
		{
			name: "incomplete coordinates",
			station: func() *fakeAPI {
				return &fakeAPI{station: stationPayload("KSFO", "San Francisco Intl", "America/Los_Angeles", []float64{-122.3650})}
			},
			check: func(t *testing.T, warehouse *fakeWarehouse) {
				row := warehouse.stations["KSFO"].row
				if row.Longitude != nil || row.Latitude != nil {
					t.Error("Expected nil coordinates for single-element pair")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warehouse := newFakeWarehouse()
			processor := NewStationProcessor(warehouse, tt.station(), zap.NewNop().Sugar())

			if _, _, err := processor.ProcessStation(context.Background(), "KSFO"); err != nil {
				t.Fatalf("ProcessStation() error = %v", err)
			}
			tt.check(t, warehouse)
		})
	}
}

func TestProcessStation_NoRowReturned(t *testing.T) {
	warehouse := newFakeWarehouse()
	warehouse.upsertErr = fmt.Errorf("station upsert for KSFO: %w", ErrNoRowReturned)
	api := &fakeAPI{station: stationPayload("KSFO", "San Francisco Intl", "America/Los_Angeles", []float64{-122.3650, 37.6197})}
	processor := NewStationProcessor(warehouse, api, zap.NewNop().Sugar())

	_, _, err := processor.ProcessStation(context.Background(), "KSFO")
	if !errors.Is(err, ErrNoRowReturned) {
		t.Fatalf("Expected ErrNoRowReturned, got %v", err)
	}
}

func TestProcessStation_APIError(t *testing.T) {
	warehouse := newFakeWarehouse()
	apiErr := errors.New("connection refused")
	processor := NewStationProcessor(warehouse, &fakeAPI{stationErr: apiErr}, zap.NewNop().Sugar())

	_, _, err := processor.ProcessStation(context.Background(), "KSFO")
	if !errors.Is(err, apiErr) {
		t.Fatalf("Expected transport error to propagate, got %v", err)
	}

	if warehouse.upsertCalls != 0 {
		t.Errorf("Expected no database write after transport failure, got %d upserts", warehouse.upsertCalls)
	}
}
