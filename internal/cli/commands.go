package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jengzang/bikeshare-go/internal/api"
	"github.com/jengzang/bikeshare-go/internal/config"
	"github.com/jengzang/bikeshare-go/internal/handler"
	"github.com/jengzang/bikeshare-go/internal/loader"
	"github.com/jengzang/bikeshare-go/internal/models"
	"github.com/jengzang/bikeshare-go/internal/service"
)

const shutdownTimeout = 5 * time.Second

// TripWriter stores a city's trips
type TripWriter interface {
	ReplaceCityTrips(ctx context.Context, ds *models.Dataset, source string) error
}

// Import reads every CSV city and replaces its rows in the database. A city
// that fails to load is reported and skipped; the joined errors are returned.
func Import(ctx context.Context, cfg *config.Config, l *loader.Loader, repo TripWriter, out io.Writer, logger *slog.Logger) error {
	var errs []error
	for _, name := range cfg.CityNames() {
		src := cfg.Cities[name]
		if src.Format != config.FormatCSV {
			logger.Info("skipping city that is not a CSV source", "city", name, "format", src.Format)
			continue
		}

		started := time.Now()
		ds, err := l.ReadCity(ctx, name)
		if err != nil {
			logger.Error("failed to read city", "city", name, "error", err)
			errs = append(errs, fmt.Errorf("failed to read %s: %w", name, err))
			continue
		}
		if err := repo.ReplaceCityTrips(ctx, ds, cfg.SourcePath(src)); err != nil {
			return errors.Join(append(errs, fmt.Errorf("failed to import %s: %w", name, err))...)
		}

		logger.Info("city imported", "city", name, "rows", ds.Len(), "elapsed", time.Since(started))
		fmt.Fprintf(out, "imported %d trips for %s\n", ds.Len(), name)
	}
	return errors.Join(errs...)
}

// Serve runs the HTTP API until ctx is cancelled
func Serve(ctx context.Context, cfg *config.Config, l *loader.Loader, logger *slog.Logger) error {
	cached := service.NewCachedLoader(l, cfg.Server.CacheSize, cfg.Server.CacheTTL, logger)
	statsHandler := handler.NewStatsHandler(service.NewStatsService(cached, logger), logger)
	router := api.SetupRouter(cfg, statsHandler, logger)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Port, "auth", cfg.JWTSecret != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
