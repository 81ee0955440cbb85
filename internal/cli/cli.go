package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/jengzang/bikeshare-go/internal/config"
)

// Commands
const (
	CommandInteractive = "interactive"
	CommandServe       = "serve"
	CommandImport      = "import"
)

// ExitError is an error that carries a process exit code
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options holds the parsed command line
type Options struct {
	ConfigPath string
	LogLevel   string // empty means the config file decides
	LogFormat  string
	Command    string
}

// Parse processes command-line arguments. It returns the options, whether
// the program should exit cleanly (help was requested), or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("bikeshare", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bikeshare - descriptive statistics over US bikeshare trip data.

Usage:
  bikeshare [options] [command]

Commands:
  interactive  Prompt for a city, month and day and print statistics (default)
  serve        Serve statistics over HTTP
  import       Load every CSV city into the SQLite database

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", config.DefaultPath, "Path to the YAML config file.")
	logLevelFlag := flagSet.String("log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'. Overrides the config file.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format: 'text' or 'json'. Overrides the config file.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "too many arguments: " + strings.Join(flagSet.Args(), " ")}
	}

	command := CommandInteractive
	if flagSet.NArg() == 1 {
		command = strings.ToLower(flagSet.Arg(0))
	}
	switch command {
	case CommandInteractive, CommandServe, CommandImport:
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", flagSet.Arg(0))}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "" && logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	return &Options{
		ConfigPath: *configFlag,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Command:    command,
	}, false, nil
}
