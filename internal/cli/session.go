package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/jengzang/bikeshare-go/internal/config"
	"github.com/jengzang/bikeshare-go/internal/models"
)

const (
	cityPrompt    = "Please choose one of the following cities (%s): "
	monthPrompt   = "Please enter the month to view (January, February, March, April, May, June or all): "
	dayPrompt     = "Please enter the day of the week to view (Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday or all): "
	restartPrompt = "\nWould you like to restart? Enter yes or no.\n"
)

// Reporter computes a statistics report for one city and filter
type Reporter interface {
	Report(ctx context.Context, city, month, day string) (*models.Report, error)
	Cities() []string
}

// Session runs the interactive prompt loop
type Session struct {
	reporter Reporter
	in       io.Reader
	lines    <-chan string
	out      io.Writer
	logger   *slog.Logger
}

// NewSession creates a session reading answers from in and writing to out
func NewSession(reporter Reporter, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		reporter: reporter,
		in:       in,
		out:      out,
		logger:   logger,
	}
}

// Run prompts for filters and prints reports until the user declines to
// restart, input ends or ctx is cancelled. A prompt waiting for input
// returns as soon as ctx is done.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.lines = s.readLines(done)

	err := s.loop(ctx)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Session) loop(ctx context.Context) error {
	fmt.Fprintln(s.out, "Hello! Let's explore some US bikeshare data!")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		city, month, day, err := s.filters(ctx)
		if err != nil {
			return err
		}

		report, err := s.reporter.Report(ctx, city, month, day)
		switch {
		case err == nil:
			if err := WriteReport(s.out, report); err != nil {
				return err
			}
		case models.IsEmptyDataset(err):
			fmt.Fprintf(s.out, "\nNo trips match: %v\n", err)
		case models.IsMalformedData(err):
			s.logger.Error("failed to load trips", "error", err)
			fmt.Fprintf(s.out, "\nCould not read the trip data: %v\n", err)
		case models.IsSelectorError(err):
			fmt.Fprintf(s.out, "\n%v\n", err)
		default:
			return err
		}

		answer, err := s.ask(ctx, restartPrompt)
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "yes") {
			return nil
		}
	}
}

// filters asks the three questions
func (s *Session) filters(ctx context.Context) (city, month, day string, err error) {
	cities := s.reporter.Cities()
	names := make([]string, len(cities))
	for i, c := range cities {
		names[i] = titleCase(c)
	}

	if city, err = s.question(ctx, fmt.Sprintf(cityPrompt, strings.Join(names, ", ")), func(answer string) error {
		return checkCity(answer, cities)
	}); err != nil {
		return
	}
	if month, err = s.question(ctx, monthPrompt, func(answer string) error {
		_, err := models.ParseMonth(answer)
		return err
	}); err != nil {
		return
	}
	if day, err = s.question(ctx, dayPrompt, func(answer string) error {
		_, err := models.ParseDay(answer)
		return err
	}); err != nil {
		return
	}

	fmt.Fprintln(s.out, strings.Repeat("-", 40))
	return city, month, day, nil
}

// question repeats prompt until check accepts the answer
func (s *Session) question(ctx context.Context, prompt string, check func(string) error) (string, error) {
	for {
		answer, err := s.ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		err = check(answer)
		if err == nil {
			return answer, nil
		}
		if !models.IsSelectorError(err) {
			s.logger.Warn("unexpected answer check failure", "error", err)
		}
		fmt.Fprintf(s.out, "%v. Please try again.\n", err)
	}
}

// ask prints prompt and waits for the next line. It returns io.EOF when
// input ends and ctx.Err() when ctx is done first.
func (s *Session) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	select {
	case <-ctx.Done():
		fmt.Fprintln(s.out)
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// readLines scans input on its own goroutine so a blocked read never holds
// up cancellation. The goroutine stops sending once done is closed; a read
// already blocked on the input stays blocked until the input yields.
func (s *Session) readLines(done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Error("failed to read input", "error", err)
		}
	}()
	return lines
}

func checkCity(answer string, cities []string) error {
	if slices.Contains(cities, config.NormalizeCity(answer)) {
		return nil
	}
	return &models.UnknownCityError{City: answer, Supported: cities}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IsInterrupted reports whether err only signals a cancelled context
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
