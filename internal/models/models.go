package models

import "time"

// StationResponse represents a station payload from the weather API
// (GET /stations/{id}).
type StationResponse struct {
	Properties StationProperties `json:"properties"`
	Geometry   StationGeometry   `json:"geometry"`
}

type StationProperties struct {
	StationIdentifier string `json:"stationIdentifier"`
	Name              string `json:"name"`
	TimeZone          string `json:"timeZone"`
}

// StationGeometry carries the station position as a GeoJSON point,
// coordinates ordered [longitude, latitude].
type StationGeometry struct {
	Coordinates []float64 `json:"coordinates"`
}

// ObservationsResponse represents an observation page from the weather API
// (GET /stations/{id}/observations/).
type ObservationsResponse struct {
	Features []ObservationFeature `json:"features"`
}

// ObservationFeature is one raw observation. Properties is a pointer so a
// feature without a properties object is distinguishable from an empty one.
type ObservationFeature struct {
	Properties *ObservationProperties `json:"properties"`
}

type ObservationProperties struct {
	Timestamp        string      `json:"timestamp"`
	Temperature      Measurement `json:"temperature"`
	WindSpeed        Measurement `json:"windSpeed"`
	RelativeHumidity Measurement `json:"relativeHumidity"`
}

// Measurement wraps a nullable numeric reading; Value is nil when the
// provider omitted it.
type Measurement struct {
	Value *float64 `json:"value"`
}

// StationRow is a row of the dim_station table as written by the pipeline.
// Optional attributes are pointers and stored as NULL when absent.
type StationRow struct {
	StationID       string
	StationName     *string
	StationTimezone *string
	Longitude       *float64
	Latitude        *float64
}

// ObservationRow is a row of the fact_observation table. The three metric
// fields are independently nullable.
type ObservationRow struct {
	StationSK            int64
	ObservationTimestamp time.Time
	Temperature          *float64
	WindSpeed            *float64
	Humidity             *float64
}
