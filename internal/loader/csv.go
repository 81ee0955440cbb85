package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/jengzang/bikeshare-go/internal/models"
)

// Source column names
const (
	ColStartTime    = "Start Time"
	ColEndTime      = "End Time"
	ColTripDuration = "Trip Duration"
	ColStartStation = "Start Station"
	ColEndStation   = "End Station"
	ColUserType     = "User Type"
	ColGender       = "Gender"
	ColBirthYear    = "Birth Year"
)

// Derived column names
const (
	colRow       = "row"
	colMonth     = "month"
	colDayOfWeek = "day_of_week"
	colHour      = "hour"
)

// RequiredColumns must be present in every city source
var RequiredColumns = []string{
	ColStartTime, ColEndTime, ColTripDuration,
	ColStartStation, ColEndStation, ColUserType,
}

// coordinate column sets, checked in order
var coordinateColumns = [][4]string{
	{"Start Latitude", "Start Longitude", "End Latitude", "End Longitude"},
	{"start_lat", "start_lng", "end_lat", "end_lng"},
}

// TimestampLayouts are tried in order when parsing start and end times
var TimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	time.RFC3339,
}

var (
	errBadTimestamp = errors.New("unrecognized timestamp")
	errEmptySource  = errors.New("source has no header")
)

// ParseTimestamp parses a trip timestamp using TimestampLayouts
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errBadTimestamp, s)
}

// table is a parsed city source: the gota frame carrying the derived
// columns, and the decoded trips indexed by the frame's row column
type table struct {
	frame           dataframe.DataFrame
	trips           []models.Trip
	hasDemographics bool
}

// readTable parses a CSV source, decodes every row and derives the calendar
// columns. name is only used in error messages. A source with a header and
// no rows yields an empty table.
func readTable(r io.Reader, name string) (*table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &models.MalformedDataError{Source: name, Err: err}
	}

	header, hasRows, err := readHeader(data)
	if err != nil {
		return nil, &models.MalformedDataError{Source: name, Err: err}
	}
	names := make(map[string]bool, len(header))
	for _, n := range header {
		names[n] = true
	}
	for _, col := range RequiredColumns {
		if !names[col] {
			return nil, &models.MalformedDataError{Source: name, Err: fmt.Errorf("missing column %q", col)}
		}
	}
	if !hasRows {
		return &table{hasDemographics: names[ColGender] && names[ColBirthYear]}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, &models.MalformedDataError{Source: name, Err: df.Err}
	}

	t := &table{hasDemographics: names[ColGender] && names[ColBirthYear]}

	cols := func(n string) []string {
		if !names[n] {
			return nil
		}
		return df.Col(n).Records()
	}
	start := cols(ColStartTime)
	end := cols(ColEndTime)
	duration := cols(ColTripDuration)
	startStation := cols(ColStartStation)
	endStation := cols(ColEndStation)
	userType := cols(ColUserType)
	gender := cols(ColGender)
	birthYear := cols(ColBirthYear)

	var coords [4][]string
	for _, set := range coordinateColumns {
		if names[set[0]] && names[set[1]] && names[set[2]] && names[set[3]] {
			for i, n := range set {
				coords[i] = cols(n)
			}
			break
		}
	}

	n := df.Nrow()
	t.trips = make([]models.Trip, n)
	rows := make([]int, n)
	months := make([]int, n)
	days := make([]string, n)
	hours := make([]int, n)

	for i := 0; i < n; i++ {
		st, err := ParseTimestamp(start[i])
		if err != nil {
			return nil, &models.MalformedDataError{Source: name, Row: i + 1, Err: err}
		}

		trip := models.Trip{
			StartTime:    st,
			Duration:     parseDuration(duration[i]),
			StartStation: cleanString(startStation[i]),
			EndStation:   cleanString(endStation[i]),
			UserType:     cleanString(userType[i]),
		}
		if et, err := ParseTimestamp(end[i]); err == nil {
			trip.EndTime = et
		}
		if gender != nil {
			trip.Gender = cleanString(gender[i])
		}
		if birthYear != nil {
			trip.BirthYear = parseYear(birthYear[i])
		}
		if coords[0] != nil {
			trip.Coords = parseCoordinates(coords[0][i], coords[1][i], coords[2][i], coords[3][i])
		}
		trip.Derive()

		t.trips[i] = trip
		rows[i] = i
		months[i] = trip.Month
		days[i] = trip.DayOfWeek
		hours[i] = trip.Hour
	}

	if n > 0 {
		df = df.Mutate(series.New(rows, series.Int, colRow)).
			Mutate(series.New(months, series.Int, colMonth)).
			Mutate(series.New(days, series.String, colDayOfWeek)).
			Mutate(series.New(hours, series.Int, colHour))
		if df.Err != nil {
			return nil, &models.MalformedDataError{Source: name, Err: df.Err}
		}
	}
	t.frame = df

	return t, nil
}

// readHeader returns the header record and whether a data record follows it
func readHeader(data []byte) ([]string, bool, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, errEmptySource
	}
	if err != nil {
		return nil, false, err
	}
	_, err = cr.Read()
	if errors.Is(err, io.EOF) {
		return header, false, nil
	}
	return header, true, nil
}

// filter narrows the frame with the month and day selectors and returns the
// matching trips in source order
func (t *table) filter(month models.MonthSelector, day models.DaySelector) ([]models.Trip, error) {
	df := t.frame
	if df.Nrow() == 0 {
		return nil, nil
	}

	if !month.IsAll() {
		df = df.Filter(dataframe.F{Colname: colMonth, Comparator: series.Eq, Comparando: int(month)})
		if df.Err != nil {
			return nil, df.Err
		}
	}
	if !day.All && df.Nrow() > 0 {
		df = df.Filter(dataframe.F{Colname: colDayOfWeek, Comparator: series.Eq, Comparando: day.Weekday.String()})
		if df.Err != nil {
			return nil, df.Err
		}
	}
	if df.Nrow() == 0 {
		return nil, nil
	}

	idx, err := df.Col(colRow).Int()
	if err != nil {
		return nil, err
	}
	trips := make([]models.Trip, 0, len(idx))
	for _, i := range idx {
		trips = append(trips, t.trips[i])
	}
	return trips, nil
}

func isMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaN", "NA", "<nil>":
		return true
	}
	return false
}

func cleanString(s string) string {
	if isMissing(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// parseDuration leaves the duration invalid for blank and non-numeric values
func parseDuration(s string) models.Duration {
	if isMissing(s) {
		return models.Duration{}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Duration{}
	}
	return models.Duration{Seconds: v, Valid: true}
}

// parseYear accepts "1985" and the "1985.0" form pandas writes for float columns
func parseYear(s string) models.NullYear {
	if isMissing(s) {
		return models.NullYear{}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return models.NullYear{}
	}
	return models.NullYear{Year: int(v), Valid: true}
}

func parseCoordinates(startLat, startLon, endLat, endLon string) *models.Coordinates {
	var vals [4]float64
	for i, s := range []string{startLat, startLon, endLat, endLon} {
		if isMissing(s) {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		vals[i] = v
	}
	return &models.Coordinates{StartLat: vals[0], StartLon: vals[1], EndLat: vals[2], EndLon: vals[3]}
}
