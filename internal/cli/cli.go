package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/leanfront/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("leanfront", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
leanfront - Scene-aware asset manifests and widget enhancement.

Usage:
  leanfront [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Modes:
  -scene S        print the manifest for scene S and exit
  -enhance FILE   enhance an HTML document and print it
  (default)       serve /manifest, /browser-calls and /health

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the config file or directory.")
	cFlag := flagSet.String("c", "", "Path to the config file or directory (shorthand).")
	sceneFlag := flagSet.String("scene", "", "Print the manifest for this scene: anon, user, all or lean.")
	minifiableFlag := flagSet.Bool("minifiable", false, "With -scene, keep only assets whose minify flag matches.")
	enhanceFlag := flagSet.String("enhance", "", "Path to an HTML document to enhance.")
	originFlag := flagSet.String("origin", "", "Base URL for requests made by widget players.")
	feedFlag := flagSet.String("feed", "", "socket.io URL pushing fragment updates while enhancing.")
	settleFlag := flagSet.Duration("settle", app.DefaultSettle, "How long to let players run before rendering.")
	portFlag := flagSet.Int("listen-port", 8080, "Port for the manifest HTTP server.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	for _, p := range []string{*configFlag, *cFlag} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Config paths determined.", "paths", paths)

	if len(paths) == 0 {
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

	var minifiable *bool
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == "minifiable" {
			minifiable = minifiableFlag
		}
	})
	if minifiable != nil && *sceneFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "-minifiable requires -scene"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPaths: paths,
		Scene:       *sceneFlag,
		Minifiable:  minifiable,
		EnhancePath: *enhanceFlag,
		Origin:      *originFlag,
		FeedURL:     *feedFlag,
		Settle:      *settleFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		ListenPort:  *portFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
