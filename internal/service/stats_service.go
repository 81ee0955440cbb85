package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jengzang/bikeshare-go/internal/analysis"
	"github.com/jengzang/bikeshare-go/internal/models"
)

// DatasetLoader loads a city's trips narrowed by month and day
type DatasetLoader interface {
	Load(ctx context.Context, city string, month models.MonthSelector, day models.DaySelector) (*models.Dataset, error)
	Cities() []string
}

// StatsService handles business logic for statistics
type StatsService struct {
	loader DatasetLoader
	logger *slog.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(loader DatasetLoader, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{
		loader: loader,
		logger: logger,
	}
}

// Cities returns the supported city names
func (s *StatsService) Cities() []string {
	return s.loader.Cities()
}

// Report parses the selectors, loads the city's trips and computes every
// statistics section. An empty selection is an EmptyDatasetError.
func (s *StatsService) Report(ctx context.Context, city, month, day string) (*models.Report, error) {
	m, err := models.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	d, err := models.ParseDay(day)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ds, err := s.loader.Load(ctx, city, m, d)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dataset loaded",
		"city", ds.City, "month", m.String(), "day", d.String(),
		"rows", ds.Len(), "elapsed", time.Since(started))

	return s.Analyze(ds)
}

// Analyze runs the four aggregations over a loaded dataset
func (s *StatsService) Analyze(ds *models.Dataset) (*models.Report, error) {
	if ds.Len() == 0 {
		return nil, &models.EmptyDatasetError{Filter: ds.Filter}
	}

	report := &models.Report{
		City:   ds.City,
		Filter: ds.Filter,
		Rows:   ds.Len(),
	}

	var err error
	if report.Time, err = analysis.TimePatterns(ds); err != nil {
		return nil, fmt.Errorf("failed to compute time stats: %w", err)
	}
	if report.Stations, err = analysis.Stations(ds); err != nil {
		return nil, fmt.Errorf("failed to compute station stats: %w", err)
	}
	if report.Duration, err = analysis.Durations(ds); err != nil {
		return nil, fmt.Errorf("failed to compute duration stats: %w", err)
	}
	if report.Users, err = analysis.Users(ds); err != nil {
		return nil, fmt.Errorf("failed to compute user stats: %w", err)
	}

	if report.Duration.SkippedRows > 0 {
		s.logger.Warn("trips without a valid duration were skipped",
			"city", ds.City, "skipped", report.Duration.SkippedRows)
	}

	report.GeneratedAt = time.Now().Format(time.RFC3339)
	return report, nil
}
