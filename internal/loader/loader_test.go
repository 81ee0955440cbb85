package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/bikeshare-go/internal/config"
	"github.com/jengzang/bikeshare-go/internal/models"
)

const chicagoCSV = `,Start Time,End Time,Trip Duration,Start Station,End Station,User Type,Gender,Birth Year
1,2017-01-02 08:15:00,2017-01-02 08:20:00,300,Clark St & Elm St,Canal St & Adams St,Subscriber,Male,1980.0
2,2017-02-06 17:45:10,2017-02-06 18:00:10,900,Canal St & Adams St,Clark St & Elm St,Customer,,
3,2017-01-07 08:05:00,2017-01-07 08:30:00,,Clark St & Elm St,Canal St & Adams St,Subscriber,Female,1990.0
`

const washingtonCSV = `,Start Time,End Time,Trip Duration,Start Station,End Station,User Type
0,2017-03-06 09:00:00,2017-03-06 09:10:00,600.5,14th & V St NW,Lincoln Memorial,Registered
1,2017-03-07 10:00:00,2017-03-07 10:30:00,1800.0,Lincoln Memorial,14th & V St NW,Casual
`

func newTestLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	dir := t.TempDir()
	cities := make(map[string]config.CityConfig, len(files))
	for city, body := range files {
		name := filepath.Base(city) + ".csv"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
		cities[city] = config.CityConfig{Source: name, Format: config.FormatCSV}
	}
	cfg := &config.Config{DataDir: dir, Cities: cities}
	return New(cfg, nil, nil)
}

func mustMonth(t *testing.T, s string) models.MonthSelector {
	t.Helper()
	m, err := models.ParseMonth(s)
	require.NoError(t, err)
	return m
}

func mustDay(t *testing.T, s string) models.DaySelector {
	t.Helper()
	d, err := models.ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestLoadAllReturnsEveryRow(t *testing.T) {
	l := newTestLoader(t, map[string]string{"chicago": chicagoCSV})

	ds, err := l.Load(context.Background(), "Chicago", mustMonth(t, "all"), mustDay(t, "all"))
	require.NoError(t, err)

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "chicago", ds.City)
	assert.True(t, ds.HasDemographics)

	first := ds.Trips[0]
	assert.Equal(t, time.Date(2017, 1, 2, 8, 15, 0, 0, time.UTC), first.StartTime)
	assert.Equal(t, time.Date(2017, 1, 2, 8, 20, 0, 0, time.UTC), first.EndTime)
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, "Monday", first.DayOfWeek)
	assert.Equal(t, 8, first.Hour)
	assert.Equal(t, models.Duration{Seconds: 300, Valid: true}, first.Duration)
	assert.Equal(t, "Clark St & Elm St", first.StartStation)
	assert.Equal(t, "Male", first.Gender)
	assert.Equal(t, models.NullYear{Year: 1980, Valid: true}, first.BirthYear)
	assert.Nil(t, first.Coords)

	second := ds.Trips[1]
	assert.Empty(t, second.Gender)
	assert.False(t, second.BirthYear.Valid)

	third := ds.Trips[2]
	assert.False(t, third.Duration.Valid)
	assert.Equal(t, "Saturday", third.DayOfWeek)
}

func TestLoadMonthFilter(t *testing.T) {
	l := newTestLoader(t, map[string]string{"chicago": chicagoCSV})
	ctx := context.Background()

	ds, err := l.Load(ctx, "chicago", mustMonth(t, "january"), models.AllDays)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	for _, trip := range ds.Trips {
		assert.Equal(t, 1, trip.Month)
	}
	assert.Equal(t, models.MonthSelector(1), ds.Filter.Month)

	ds, err = l.Load(ctx, "chicago", mustMonth(t, "February"), models.AllDays)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	ds, err = l.Load(ctx, "chicago", mustMonth(t, "march"), models.AllDays)
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
}

func TestLoadDayFilter(t *testing.T) {
	l := newTestLoader(t, map[string]string{"chicago": chicagoCSV})
	ctx := context.Background()

	ds, err := l.Load(ctx, "chicago", 0, mustDay(t, "MONDAY"))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	for _, trip := range ds.Trips {
		assert.Equal(t, "Monday", trip.DayOfWeek)
	}

	ds, err = l.Load(ctx, "chicago", mustMonth(t, "january"), mustDay(t, "monday"))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, 300.0, ds.Trips[0].Duration.Seconds)

	ds, err = l.Load(ctx, "chicago", 0, mustDay(t, "tuesday"))
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
}

func TestFilterAgreesWithLoad(t *testing.T) {
	l := newTestLoader(t, map[string]string{"chicago": chicagoCSV})
	ctx := context.Background()

	all, err := l.ReadCity(ctx, "chicago")
	require.NoError(t, err)

	for _, month := range []string{"all", "january", "february", "june"} {
		for _, day := range []string{"all", "monday", "saturday", "sunday"} {
			m, d := mustMonth(t, month), mustDay(t, day)

			loaded, err := l.Load(ctx, "chicago", m, d)
			require.NoError(t, err)

			filtered := Filter(all, models.TripFilter{Month: m, Day: d})
			assert.Equal(t, loaded.Trips, filtered.Trips, "month=%s day=%s", month, day)
			assert.Equal(t, "chicago", filtered.Filter.City)
		}
	}
	assert.Equal(t, 3, all.Len(), "Filter must not modify its input")
}

func TestLoadWithoutDemographicColumns(t *testing.T) {
	l := newTestLoader(t, map[string]string{"washington": washingtonCSV})

	ds, err := l.Load(context.Background(), "washington", 0, models.AllDays)
	require.NoError(t, err)

	assert.False(t, ds.HasDemographics)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 600.5, ds.Trips[0].Duration.Seconds)
	assert.Equal(t, "Registered", ds.Trips[0].UserType)
}

func TestLoadCoordinates(t *testing.T) {
	csv := `Start Time,End Time,Trip Duration,Start Station,End Station,User Type,start_lat,start_lng,end_lat,end_lng
2017-04-03 07:00:00,2017-04-03 07:10:00,600,A,B,Subscriber,41.88,-87.63,41.89,-87.62
2017-04-03 08:00:00,2017-04-03 08:10:00,600,B,A,Subscriber,,,,
`
	l := newTestLoader(t, map[string]string{"chicago": csv})

	ds, err := l.ReadCity(context.Background(), "chicago")
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t, &models.Coordinates{StartLat: 41.88, StartLon: -87.63, EndLat: 41.89, EndLon: -87.62}, ds.Trips[0].Coords)
	assert.Nil(t, ds.Trips[1].Coords)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown city", func(t *testing.T) {
		l := newTestLoader(t, map[string]string{"chicago": chicagoCSV})
		_, err := l.Load(ctx, "boston", 0, models.AllDays)

		var cityErr *models.UnknownCityError
		require.True(t, errors.As(err, &cityErr))
		assert.Equal(t, "boston", cityErr.City)
		assert.Equal(t, []string{"chicago"}, cityErr.Supported)
		assert.True(t, models.IsSelectorError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &config.Config{DataDir: t.TempDir(), Cities: map[string]config.CityConfig{
			"chicago": {Source: "nope.csv", Format: config.FormatCSV},
		}}
		_, err := New(cfg, nil, nil).Load(ctx, "chicago", 0, models.AllDays)

		require.True(t, models.IsMalformedData(err))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("bad start time", func(t *testing.T) {
		csv := `Start Time,End Time,Trip Duration,Start Station,End Station,User Type
2017-01-02 08:15:00,,300,A,B,Subscriber
yesterday,,300,A,B,Subscriber
`
		l := newTestLoader(t, map[string]string{"chicago": csv})
		_, err := l.Load(ctx, "chicago", 0, models.AllDays)

		var dataErr *models.MalformedDataError
		require.True(t, errors.As(err, &dataErr))
		assert.Equal(t, 2, dataErr.Row)
		assert.ErrorIs(t, err, errBadTimestamp)
	})

	t.Run("missing column", func(t *testing.T) {
		csv := "Start Time,End Time,Start Station,End Station,User Type\n2017-01-02 08:15:00,,A,B,Subscriber\n"
		l := newTestLoader(t, map[string]string{"chicago": csv})
		_, err := l.Load(ctx, "chicago", 0, models.AllDays)

		require.True(t, models.IsMalformedData(err))
		assert.Contains(t, err.Error(), ColTripDuration)
	})

	t.Run("sqlite without store", func(t *testing.T) {
		cfg := &config.Config{Cities: map[string]config.CityConfig{
			"chicago": {Format: config.FormatSQLite},
		}}
		_, err := New(cfg, nil, nil).Load(ctx, "chicago", 0, models.AllDays)
		assert.True(t, models.IsMalformedData(err))
	})
}

type fakeStore struct {
	got models.TripFilter
}

func (s *fakeStore) GetTrips(_ context.Context, filter models.TripFilter) (*models.Dataset, error) {
	s.got = filter
	return &models.Dataset{City: filter.City, Filter: filter, Trips: []models.Trip{{UserType: "Subscriber"}}}, nil
}

func TestLoadFromStore(t *testing.T) {
	cfg := &config.Config{Cities: map[string]config.CityConfig{
		"new york city": {Format: config.FormatSQLite},
	}}
	store := &fakeStore{}

	ds, err := New(cfg, store, nil).Load(context.Background(), "New York City", mustMonth(t, "may"), mustDay(t, "friday"))
	require.NoError(t, err)

	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "new york city", store.got.City)
	assert.Equal(t, models.MonthSelector(5), store.got.Month)
	assert.Equal(t, time.Friday, store.got.Day.Weekday)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2017, 6, 23, 15, 9, 0, 0, time.UTC)
	for _, s := range []string{"2017-06-23 15:09:00", "2017-06-23T15:09:00", "2017-06-23 15:09", "6/23/2017 15:09", " 2017-06-23 15:09:00 "} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseTimestamp("")
	assert.Error(t, err)
}

func TestLoadHeaderOnlySource(t *testing.T) {
	ctx := context.Background()
	header := strings.SplitN(chicagoCSV, "\n", 2)[0] + "\n"
	l := newTestLoader(t, map[string]string{"chicago": header})

	ds, err := l.Load(ctx, "chicago", 0, models.AllDays)
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
	assert.True(t, ds.HasDemographics)

	ds, err = l.Load(ctx, "chicago", mustMonth(t, "june"), mustDay(t, "friday"))
	require.NoError(t, err)
	assert.Zero(t, ds.Len())

	t.Run("no header", func(t *testing.T) {
		l := newTestLoader(t, map[string]string{"chicago": ""})
		_, err := l.Load(ctx, "chicago", 0, models.AllDays)
		require.True(t, models.IsMalformedData(err))
		assert.ErrorIs(t, err, errEmptySource)
	})
}
