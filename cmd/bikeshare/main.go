package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jengzang/bikeshare-go/internal/cli"
	"github.com/jengzang/bikeshare-go/internal/config"
	"github.com/jengzang/bikeshare-go/internal/database"
	"github.com/jengzang/bikeshare-go/internal/loader"
	"github.com/jengzang/bikeshare-go/internal/logging"
	"github.com/jengzang/bikeshare-go/internal/repository"
	"github.com/jengzang/bikeshare-go/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires the application and executes the selected command
func run(ctx context.Context, in io.Reader, out, errW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, out)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// 加载配置
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, errW)
	slog.SetDefault(logger)

	// 初始化数据库
	var db *sql.DB
	if opts.Command == cli.CommandImport || usesSQLite(cfg) {
		db, err = database.Open(ctx, database.Config{Path: cfg.DBPath}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
	}

	var repo *repository.TripRepository
	var store loader.TripStore
	if db != nil {
		repo = repository.NewTripRepository(db)
		store = repo
	}
	l := loader.New(cfg, store, logger)

	switch opts.Command {
	case cli.CommandServe:
		return cli.Serve(ctx, cfg, l, logger)
	case cli.CommandImport:
		return cli.Import(ctx, cfg, l, repo, out, logger)
	default:
		session := cli.NewSession(service.NewStatsService(l, logger), in, out, logger)
		if err := session.Run(ctx); err != nil && !cli.IsInterrupted(err) {
			return err
		}
		return nil
	}
}

func usesSQLite(cfg *config.Config) bool {
	for _, city := range cfg.Cities {
		if city.Format == config.FormatSQLite {
			return true
		}
	}
	return false
}
