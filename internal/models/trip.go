package models

import "time"

// Trip represents one bikeshare ride
type Trip struct {
	ID int64 `json:"id,omitempty" db:"id"`

	// Temporal info
	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty" db:"end_time"`

	// Duration as supplied by the source. Valid is false when the value was
	// blank or not a number.
	Duration Duration `json:"duration" db:"trip_duration"`

	// Stations
	StartStation string `json:"start_station" db:"start_station"`
	EndStation   string `json:"end_station" db:"end_station"`

	// Rider
	UserType  string   `json:"user_type" db:"user_type"`
	Gender    string   `json:"gender,omitempty" db:"gender"`
	BirthYear NullYear `json:"birth_year,omitempty" db:"birth_year"`

	// Coordinates, only present in sources that carry them
	Coords *Coordinates `json:"coords,omitempty"`

	// Derived from StartTime at load time
	Month     int    `json:"month" db:"month"`
	DayOfWeek string `json:"day_of_week" db:"day_of_week"`
	Hour      int    `json:"hour" db:"hour"`
}

// Duration is a trip duration in seconds that may be missing
type Duration struct {
	Seconds float64
	Valid   bool
}

// NullYear is a birth year that may be missing
type NullYear struct {
	Year  int
	Valid bool
}

// Coordinates holds start and end positions in degrees
type Coordinates struct {
	StartLat float64 `json:"start_lat"`
	StartLon float64 `json:"start_lon"`
	EndLat   float64 `json:"end_lat"`
	EndLon   float64 `json:"end_lon"`
}

// Derive fills Month, DayOfWeek and Hour from StartTime.
func (t *Trip) Derive() {
	t.Month = int(t.StartTime.Month())
	t.DayOfWeek = t.StartTime.Weekday().String()
	t.Hour = t.StartTime.Hour()
}

// Dataset is the set of trips for a single city after filtering
type Dataset struct {
	City   string     `json:"city"`
	Filter TripFilter `json:"filter"`
	Trips  []Trip     `json:"-"`

	// HasDemographics reports whether the source carries gender and birth
	// year columns.
	HasDemographics bool `json:"has_demographics"`
}

// Len returns the number of trips in the dataset
func (d *Dataset) Len() int {
	return len(d.Trips)
}
