package analysis

import (
	"time"

	"github.com/jengzang/bikeshare-go/internal/models"
	"github.com/jengzang/bikeshare-go/internal/spatial"
	"github.com/jengzang/bikeshare-go/internal/stats"
)

// Durations computes total, mean and median trip duration. Trips without a valid
// duration are skipped and counted.
func Durations(ds *models.Dataset) (models.DurationStats, error) {
	started := time.Now()
	if ds.Len() == 0 {
		return models.DurationStats{}, &models.EmptyDatasetError{Filter: ds.Filter}
	}

	var result models.DurationStats
	seconds := make([]float64, 0, ds.Len())
	for i := range ds.Trips {
		d := ds.Trips[i].Duration
		if !d.Valid {
			result.SkippedRows++
			continue
		}
		seconds = append(seconds, d.Seconds)
	}
	result.TotalSeconds = stats.Sum(seconds)
	result.MeanSeconds = stats.Mean(seconds)
	result.MedianSeconds = stats.Median(seconds)
	result.Counted = len(seconds)
	result.Distance = distances(ds)
	result.Elapsed = time.Since(started)

	return result, nil
}

// distances is nil unless every trip has usable coordinates
func distances(ds *models.Dataset) *models.DistanceStats {
	meters := make([]float64, 0, ds.Len())
	for i := range ds.Trips {
		d, ok := spatial.TripDistance(ds.Trips[i].Coords)
		if !ok {
			return nil
		}
		meters = append(meters, d)
	}
	return &models.DistanceStats{
		TotalMeters: stats.Sum(meters),
		MeanMeters:  stats.Mean(meters),
	}
}
