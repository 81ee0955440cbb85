package models

import "time"

// TimeStats holds the most frequent travel times
type TimeStats struct {
	CommonMonth string        `json:"common_month"` // e.g. "January"
	CommonDay   string        `json:"common_day"`   // e.g. "Monday"
	CommonHour  int           `json:"common_hour"`  // 0-23
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// StationPair is a (start, end) station combination with the number of trips
type StationPair struct {
	StartStation string `json:"start_station"`
	EndStation   string `json:"end_station"`
	Count        int    `json:"count"`
}

// StationStats holds the most popular stations and trip
type StationStats struct {
	CommonStartStation string        `json:"common_start_station"`
	CommonEndStation   string        `json:"common_end_station"`
	CommonTrip         StationPair   `json:"common_trip"`
	Elapsed            time.Duration `json:"elapsed_ns"`
}

// DurationStats holds total and mean trip duration. Rows with a missing or
// non-numeric duration are left out of both and counted in SkippedRows.
type DurationStats struct {
	TotalSeconds  float64 `json:"total_seconds"`
	MeanSeconds   float64 `json:"mean_seconds"`
	MedianSeconds float64 `json:"median_seconds"`
	Counted       int     `json:"counted"`
	SkippedRows   int     `json:"skipped_rows"`

	// Distance is only set when every trip carries coordinates
	Distance *DistanceStats `json:"distance,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// DistanceStats holds straight-line distances between start and end points
type DistanceStats struct {
	TotalMeters float64 `json:"total_meters"`
	MeanMeters  float64 `json:"mean_meters"`
}

// ValueCount is a distinct value with the number of rows carrying it
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Demographics holds gender and birth year statistics
type Demographics struct {
	Available bool         `json:"available"`
	Genders   []ValueCount `json:"genders,omitempty"`

	// Birth year fields are nil when no row has a birth year
	EarliestBirthYear   *int `json:"earliest_birth_year,omitempty"`
	MostRecentBirthYear *int `json:"most_recent_birth_year,omitempty"`
	CommonBirthYear     *int `json:"common_birth_year,omitempty"`
}

// UserStats holds user type counts and demographics
type UserStats struct {
	UserTypes    []ValueCount  `json:"user_types"`
	Demographics Demographics  `json:"demographics"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

// Report is the complete statistics output for one city and filter
type Report struct {
	City     string        `json:"city"`
	Filter   TripFilter    `json:"filter"`
	Rows     int           `json:"rows"`
	Time     TimeStats     `json:"time"`
	Stations StationStats  `json:"stations"`
	Duration DurationStats `json:"duration"`
	Users    UserStats     `json:"users"`

	GeneratedAt string `json:"generated_at"`
}
