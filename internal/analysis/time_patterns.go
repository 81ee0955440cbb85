package analysis

import (
	"time"

	"github.com/jengzang/bikeshare-go/internal/models"
	"github.com/jengzang/bikeshare-go/internal/stats"
)

// TimePatterns finds the most common month, day of week and start hour
func TimePatterns(ds *models.Dataset) (models.TimeStats, error) {
	started := time.Now()
	if ds.Len() == 0 {
		return models.TimeStats{}, &models.EmptyDatasetError{Filter: ds.Filter}
	}

	months := stats.NewCounter[int]()
	days := stats.NewCounter[string]()
	hours := stats.NewCounter[int]()
	for i := range ds.Trips {
		t := &ds.Trips[i]
		months.Add(t.Month)
		days.Add(t.DayOfWeek)
		hours.Add(t.Hour)
	}

	month, _, _ := months.Mode()
	day, _, _ := days.Mode()
	hour, _, _ := hours.Mode()

	return models.TimeStats{
		CommonMonth: time.Month(month).String(),
		CommonDay:   day,
		CommonHour:  hour,
		Elapsed:     time.Since(started),
	}, nil
}
