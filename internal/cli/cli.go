package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/vk/expgridgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// envOverrides are defaults settable from the environment, applied before
// flags so explicit flags always win.
type envOverrides struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	Workers   int    `envconfig:"WORKERS" default:"1"`
	GPUs      string `envconfig:"GPUS"`
	Ledger    string `envconfig:"LEDGER" default:"runs.db"`
}

// Parse processes command-line arguments. It returns a populated AppConfig,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var env envOverrides
	if err := envconfig.Process("expgridgo", &env); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("expgridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
ExpGridGo - A declarative launcher for knowledge-graph RL experiment grids.

Usage:
  expgridgo [options] [CONFIG_PATH] [-- passthrough args...]

Arguments:
  CONFIG_PATH
    Path to a single .hcl experiment file or a directory containing .hcl files.
  passthrough args
    Extra tokens appended verbatim to the end of the trainer command line.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the experiment file or directory.")
	cFlag := flagSet.String("c", "", "Path to the experiment file or directory (shorthand).")
	modeFlag := flagSet.String("mode", "--train", "Experiment mode token forwarded verbatim to the trainer.")
	gpuFlag := flagSet.String("gpu", "0", "GPU identifier forwarded as the --gpu value.")
	gpusFlag := flagSet.String("gpus", env.GPUs, "Comma-separated GPU pool for concurrent grid execution.")
	workersFlag := flagSet.Int("workers", env.Workers, "Number of concurrent workers for the executor.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Assemble and print commands without executing anything.")
	historyFlag := flagSet.Int("history", 0, "Print the N most recent runs from the ledger and exit. 0 is disabled.")
	ledgerFlag := flagSet.String("ledger", env.Ledger, "Path to the SQLite run ledger. Empty disables recording.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", env.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", env.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	positionals := flagSet.Args()

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if len(positionals) > 0 {
		path = positionals[0]
		positionals = positionals[1:]
	}
	slog.Debug("Config path determined.", "path", path)

	// Everything after the config path is pass-through; an explicit "--"
	// separator is tolerated and stripped.
	if len(positionals) > 0 && positionals[0] == "--" {
		positionals = positionals[1:]
	}

	if path == "" && *historyFlag == 0 {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	gpus := []string{*gpuFlag}
	if *gpusFlag != "" {
		gpus = gpus[:0]
		for _, id := range strings.Split(*gpusFlag, ",") {
			if id = strings.TrimSpace(id); id != "" {
				gpus = append(gpus, id)
			}
		}
	}
	if len(gpus) == 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid gpus: at least one GPU identifier is required"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		GridPath:        path,
		Mode:            *modeFlag,
		GPUs:            gpus,
		Workers:         *workersFlag,
		Extra:           positionals,
		DryRun:          *dryRunFlag,
		History:         *historyFlag,
		Ledger:          *ledgerFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
