package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/bikeshare-go/internal/database"
	"github.com/jengzang/bikeshare-go/internal/models"
)

// ErrCityNotImported is returned when a city has no rows in the database
var ErrCityNotImported = errors.New("city has not been imported")

const timeLayout = "2006-01-02 15:04:05"

// TripRepository handles database operations for trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// ReplaceCityTrips deletes every stored trip of the dataset's city and
// inserts the dataset's trips in order, in one transaction
func (r *TripRepository) ReplaceCityTrips(ctx context.Context, ds *models.Dataset, source string) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM trips WHERE city = ?", ds.City); err != nil {
			return fmt.Errorf("failed to clear trips: %w", err)
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO cities (name, source, has_demographics, imported_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET
				source = excluded.source,
				has_demographics = excluded.has_demographics,
				imported_at = excluded.imported_at`,
			ds.City, source, ds.HasDemographics)
		if err != nil {
			return fmt.Errorf("failed to save city: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO trips (
			city, seq, start_time, end_time, trip_duration,
			start_station, end_station, user_type, gender, birth_year,
			start_lat, start_lon, end_lat, end_lon,
			month, day_of_week, hour
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare trip insert: %w", err)
		}
		defer stmt.Close()

		for i := range ds.Trips {
			t := &ds.Trips[i]

			var endTime, gender sql.NullString
			var duration, startLat, startLon, endLat, endLon sql.NullFloat64
			var birthYear sql.NullInt64

			if !t.EndTime.IsZero() {
				endTime = sql.NullString{String: t.EndTime.Format(timeLayout), Valid: true}
			}
			if t.Duration.Valid {
				duration = sql.NullFloat64{Float64: t.Duration.Seconds, Valid: true}
			}
			if t.Gender != "" {
				gender = sql.NullString{String: t.Gender, Valid: true}
			}
			if t.BirthYear.Valid {
				birthYear = sql.NullInt64{Int64: int64(t.BirthYear.Year), Valid: true}
			}
			if c := t.Coords; c != nil {
				startLat = sql.NullFloat64{Float64: c.StartLat, Valid: true}
				startLon = sql.NullFloat64{Float64: c.StartLon, Valid: true}
				endLat = sql.NullFloat64{Float64: c.EndLat, Valid: true}
				endLon = sql.NullFloat64{Float64: c.EndLon, Valid: true}
			}

			_, err := stmt.ExecContext(ctx,
				ds.City, i, t.StartTime.Format(timeLayout), endTime, duration,
				t.StartStation, t.EndStation, t.UserType, gender, birthYear,
				startLat, startLon, endLat, endLon,
				t.Month, t.DayOfWeek, t.Hour,
			)
			if err != nil {
				return fmt.Errorf("failed to insert trip %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetTrips retrieves a city's trips matching the filter, in import order
func (r *TripRepository) GetTrips(ctx context.Context, filter models.TripFilter) (*models.Dataset, error) {
	var hasDemographics bool
	err := r.db.QueryRowContext(ctx, "SELECT has_demographics FROM cities WHERE name = ?", filter.City).Scan(&hasDemographics)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.MalformedDataError{Source: "sqlite:" + filter.City, Err: ErrCityNotImported}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query city: %w", err)
	}

	query := `SELECT id, start_time, end_time, trip_duration,
		start_station, end_station, user_type, gender, birth_year,
		start_lat, start_lon, end_lat, end_lon,
		month, day_of_week, hour
		FROM trips`

	conditions := []string{"city = ?"}
	args := []interface{}{filter.City}

	if !filter.Month.IsAll() {
		conditions = append(conditions, "month = ?")
		args = append(args, int(filter.Month))
	}
	if !filter.Day.All {
		conditions = append(conditions, "day_of_week = ?")
		args = append(args, filter.Day.Weekday.String())
	}

	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY seq"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	ds := &models.Dataset{City: filter.City, Filter: filter, HasDemographics: hasDemographics}
	for rows.Next() {
		var t models.Trip
		var startTime string
		var endTime, gender sql.NullString
		var duration, startLat, startLon, endLat, endLon sql.NullFloat64
		var birthYear sql.NullInt64

		err := rows.Scan(
			&t.ID, &startTime, &endTime, &duration,
			&t.StartStation, &t.EndStation, &t.UserType, &gender, &birthYear,
			&startLat, &startLon, &endLat, &endLon,
			&t.Month, &t.DayOfWeek, &t.Hour,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}

		if t.StartTime, err = time.Parse(timeLayout, startTime); err != nil {
			return nil, &models.MalformedDataError{Source: "sqlite:" + filter.City, Err: err}
		}
		if endTime.Valid {
			t.EndTime, _ = time.Parse(timeLayout, endTime.String)
		}
		t.Duration = models.Duration{Seconds: duration.Float64, Valid: duration.Valid}
		t.Gender = gender.String
		t.BirthYear = models.NullYear{Year: int(birthYear.Int64), Valid: birthYear.Valid}
		if startLat.Valid && startLon.Valid && endLat.Valid && endLon.Valid {
			t.Coords = &models.Coordinates{
				StartLat: startLat.Float64, StartLon: startLon.Float64,
				EndLat: endLat.Float64, EndLon: endLon.Float64,
			}
		}

		ds.Trips = append(ds.Trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trips: %w", err)
	}

	return ds, nil
}

// CountTrips returns the number of stored trips for a city
func (r *TripRepository) CountTrips(ctx context.Context, city string) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips WHERE city = ?", city).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return total, nil
}
