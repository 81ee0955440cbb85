package analysis

import (
	"time"

	"github.com/jengzang/bikeshare-go/internal/models"
	"github.com/jengzang/bikeshare-go/internal/stats"
)

// UnknownValue labels blank user type and gender values
const UnknownValue = "Unknown"

// Users counts user types and, when the source has them, genders and birth
// years. Birth year statistics ignore trips without a birth year.
func Users(ds *models.Dataset) (models.UserStats, error) {
	started := time.Now()
	if ds.Len() == 0 {
		return models.UserStats{}, &models.EmptyDatasetError{Filter: ds.Filter}
	}

	types := stats.NewCounter[string]()
	for i := range ds.Trips {
		types.Add(orUnknown(ds.Trips[i].UserType))
	}

	result := models.UserStats{UserTypes: valueCounts(types)}
	if ds.HasDemographics {
		result.Demographics = demographics(ds)
	}
	result.Elapsed = time.Since(started)

	return result, nil
}

func demographics(ds *models.Dataset) models.Demographics {
	genders := stats.NewCounter[string]()
	years := make([]int, 0, ds.Len())
	for i := range ds.Trips {
		t := &ds.Trips[i]
		genders.Add(orUnknown(t.Gender))
		if t.BirthYear.Valid {
			years = append(years, t.BirthYear.Year)
		}
	}

	d := models.Demographics{
		Available: true,
		Genders:   valueCounts(genders),
	}
	if earliest, ok := stats.Min(years); ok {
		d.EarliestBirthYear = &earliest
	}
	if recent, ok := stats.Max(years); ok {
		d.MostRecentBirthYear = &recent
	}
	if common, ok := stats.Mode(years); ok {
		d.CommonBirthYear = &common
	}
	return d
}

func valueCounts(c *stats.Counter[string]) []models.ValueCount {
	sorted := c.Sorted()
	out := make([]models.ValueCount, len(sorted))
	for i, g := range sorted {
		out[i] = models.ValueCount{Value: g.Value, Count: g.N}
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}
