package insights

import (
	"context"

	"go.uber.org/zap"

	"wxwarehouse/internal/database"
)

// Source is the warehouse slice the reporter reads from.
type Source interface {
	AvgLastWeekTemperature(ctx context.Context, stationID string) (*database.TemperatureInsight, error)
	MaxWindSpeedChange(ctx context.Context, stationID string) (*database.WindSpeedInsight, error)
}

// Reporter runs the two read-only insight queries for a station and logs
// their results. It is a reporting sink: nothing is returned to callers
// beyond query errors.
type Reporter struct {
	db  Source
	log *zap.SugaredLogger
}

// NewReporter creates a new Reporter.
func NewReporter(db Source, log *zap.SugaredLogger) *Reporter {
	return &Reporter{db: db, log: log}
}

// Run executes both insight reports for the station.
func (r *Reporter) Run(ctx context.Context, stationID string) error {
	if err := r.reportAvgLastWeekTemperature(ctx, stationID); err != nil {
		return err
	}
	return r.reportMaxWindSpeedChange(ctx, stationID)
}

// reportAvgLastWeekTemperature logs last week's average temperature.
func (r *Reporter) reportAvgLastWeekTemperature(ctx context.Context, stationID string) error {
	row, err := r.db.AvgLastWeekTemperature(ctx, stationID)
	if err != nil {
		return err
	}

	if row == nil {
		r.log.Warnf("No insights found for station ID: %s", stationID)
		return nil
	}

	r.log.Infof("Station ID: %s, Station Name: %s, Average Temperature: %.2f",
		row.StationID, stationName(row.StationName), row.AvgTemperature)
	return nil
}

// reportMaxWindSpeedChange logs the maximum wind speed change over the
// last 7 days.
func (r *Reporter) reportMaxWindSpeedChange(ctx context.Context, stationID string) error {
	row, err := r.db.MaxWindSpeedChange(ctx, stationID)
	if err != nil {
		return err
	}

	if row == nil {
		r.log.Warnf("No insights found for station ID: %s", stationID)
		return nil
	}

	r.log.Infof("Station ID: %s, Station Name: %s, Max Wind Speed Change: %.2f",
		row.StationID, stationName(row.StationName), row.MaxWindSpeedChange)
	return nil
}

func stationName(name *string) string {
	if name == nil {
		return "unknown"
	}
	return *name
}
