// Package loader reads a city's trip records, derives the calendar columns
// and applies the month and day filters.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/jengzang/bikeshare-go/internal/config"
	"github.com/jengzang/bikeshare-go/internal/models"
)

var errNoStore = errors.New("city is configured for sqlite but no database is open")

// TripStore serves trips that were imported into the database
type TripStore interface {
	GetTrips(ctx context.Context, filter models.TripFilter) (*models.Dataset, error)
}

// Loader resolves city names through the configured sources
type Loader struct {
	cfg    *config.Config
	store  TripStore
	logger *slog.Logger
}

// New creates a loader. store may be nil when no city uses the sqlite format.
func New(cfg *config.Config, store TripStore, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cfg: cfg, store: store, logger: logger}
}

// Cities returns the configured city names
func (l *Loader) Cities() []string {
	return l.cfg.CityNames()
}

// Resolve returns the canonical name and source of a city
func (l *Loader) Resolve(city string) (string, config.CityConfig, error) {
	name, src, ok := l.cfg.Lookup(city)
	if !ok {
		return "", config.CityConfig{}, &models.UnknownCityError{City: city, Supported: l.cfg.CityNames()}
	}
	return name, src, nil
}

// Name returns the canonical name of a configured city
func (l *Loader) Name(city string) (string, error) {
	name, _, err := l.Resolve(city)
	return name, err
}

// Load reads a city's trips and keeps the ones matching the month and day
// selectors. The result may be empty.
func (l *Loader) Load(ctx context.Context, city string, month models.MonthSelector, day models.DaySelector) (*models.Dataset, error) {
	name, src, err := l.Resolve(city)
	if err != nil {
		return nil, err
	}
	filter := models.TripFilter{City: name, Month: month, Day: day}

	if src.Format == config.FormatSQLite {
		return l.loadStore(ctx, filter)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, path, err := l.readCSV(src)
	if err != nil {
		return nil, err
	}
	trips, err := t.filter(month, day)
	if err != nil {
		return nil, &models.MalformedDataError{Source: path, Err: err}
	}

	l.logger.Debug("trips loaded",
		"city", name, "source", path,
		"rows", len(t.trips), "matched", len(trips),
		"month", month.String(), "day", day.String())

	return &models.Dataset{
		City:            name,
		Filter:          filter,
		Trips:           trips,
		HasDemographics: t.hasDemographics,
	}, nil
}

// ReadCity returns every trip of a city, unfiltered
func (l *Loader) ReadCity(ctx context.Context, city string) (*models.Dataset, error) {
	return l.Load(ctx, city, 0, models.AllDays)
}

func (l *Loader) loadStore(ctx context.Context, filter models.TripFilter) (*models.Dataset, error) {
	if l.store == nil {
		return nil, &models.MalformedDataError{Source: "sqlite:" + filter.City, Err: errNoStore}
	}
	ds, err := l.store.GetTrips(ctx, filter)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("trips loaded from database",
		"city", filter.City, "matched", ds.Len(),
		"month", filter.Month.String(), "day", filter.Day.String())
	return ds, nil
}

func (l *Loader) readCSV(src config.CityConfig) (*table, string, error) {
	path := l.cfg.SourcePath(src)
	f, err := os.Open(path)
	if err != nil {
		return nil, path, &models.MalformedDataError{Source: path, Err: err}
	}
	defer f.Close()

	t, err := readTable(f, path)
	if err != nil {
		return nil, path, err
	}
	return t, path, nil
}

// Filter selects the trips of an unfiltered dataset that match filter. The
// input dataset is not modified.
func Filter(ds *models.Dataset, filter models.TripFilter) *models.Dataset {
	out := &models.Dataset{
		City:            ds.City,
		Filter:          filter,
		HasDemographics: ds.HasDemographics,
	}
	out.Filter.City = ds.City
	for i := range ds.Trips {
		if filter.Matches(&ds.Trips[i]) {
			out.Trips = append(out.Trips, ds.Trips[i])
		}
	}
	return out
}
