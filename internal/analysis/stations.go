package analysis

import (
	"time"

	"github.com/jengzang/bikeshare-go/internal/models"
	"github.com/jengzang/bikeshare-go/internal/stats"
)

type stationPair struct {
	start, end string
}

// StationPairs groups trips by (start, end) station in first-seen order.
// The counts add up to the number of trips.
func StationPairs(ds *models.Dataset) []models.StationPair {
	pairs := stats.NewCounter[stationPair]()
	for i := range ds.Trips {
		pairs.Add(stationPair{ds.Trips[i].StartStation, ds.Trips[i].EndStation})
	}

	groups := pairs.Groups()
	out := make([]models.StationPair, len(groups))
	for i, g := range groups {
		out[i] = models.StationPair{StartStation: g.Value.start, EndStation: g.Value.end, Count: g.N}
	}
	return out
}

// Stations finds the most common start station, end station and trip
func Stations(ds *models.Dataset) (models.StationStats, error) {
	started := time.Now()
	if ds.Len() == 0 {
		return models.StationStats{}, &models.EmptyDatasetError{Filter: ds.Filter}
	}

	starts := stats.NewCounter[string]()
	ends := stats.NewCounter[string]()
	for i := range ds.Trips {
		starts.Add(ds.Trips[i].StartStation)
		ends.Add(ds.Trips[i].EndStation)
	}
	start, _, _ := starts.Mode()
	end, _, _ := ends.Mode()

	var top models.StationPair
	for _, p := range StationPairs(ds) {
		if p.Count > top.Count {
			top = p
		}
	}

	return models.StationStats{
		CommonStartStation: start,
		CommonEndStation:   end,
		CommonTrip:         top,
		Elapsed:            time.Since(started),
	}, nil
}
