package ingest

import "PriceLineup/internal/model"

// DefaultMinObservations is the bulk-mode quality threshold.
const DefaultMinObservations = 100

// Accept reports whether a series carries at least minObs records.
func Accept(series model.Series, minObs int) bool {
	return series.Len() >= minObs
}
