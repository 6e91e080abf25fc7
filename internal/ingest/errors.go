package ingest

import "errors"

// Hard failures of the ingestion core. Both abort the current operation;
// callers match them with errors.Is.
var (
	// ErrMissingMandatoryField marks an API payload without a required
	// field (station identifier, observation timestamp, or the properties
	// container itself).
	ErrMissingMandatoryField = errors.New("mandatory field missing")

	// ErrNoRowReturned marks a storage invariant violation: the station
	// upsert is expected to return exactly one row.
	ErrNoRowReturned = errors.New("no row returned")
)
