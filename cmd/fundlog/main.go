// Command fundlog manages a TEFAS fund portfolio from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"

	"fundlog/internal/config"
	"fundlog/internal/logging"
	"fundlog/pkg/fundlog"
)

// cliEnv is what every subcommand needs: where to print and how to reach
// the portfolio database.
type cliEnv struct {
	out    io.Writer
	errOut io.Writer
	open   func() (*fundlog.Core, error)
}

func (e *cliEnv) fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.errOut, format+"\n", args...)
	return subcommands.ExitFailure
}

func main() {
	os.Exit(int(execute(context.Background(), os.Args[1:], nil)))
}

// execute parses args and runs one subcommand. A nil env opens the database
// from configuration.
func execute(ctx context.Context, args []string, env *cliEnv) subcommands.ExitStatus {
	fs := flag.NewFlagSet(path.Base(os.Args[0]), flag.ContinueOnError)
	dataDir := fs.String("data-dir", "", "Directory holding the database")
	verbose := fs.Bool("v", false, "Log pipeline activity to stderr")

	commander := subcommands.NewCommander(fs, fs.Name())
	if env == nil {
		env = &cliEnv{out: os.Stdout, errOut: os.Stderr}
		env.open = func() (*fundlog.Core, error) {
			return openFromConfig(*dataDir, *verbose)
		}
	}
	commander.Output = env.out
	commander.Error = env.errOut
	fs.SetOutput(env.errOut)

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range commands(env) {
		commander.Register(c, "portfolio")
	}

	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(ctx)
}

func commands(env *cliEnv) []subcommands.Command {
	return []subcommands.Command{
		&holdingsCmd{env: env},
		&setCmd{env: env},
		&removeCmd{env: env},
		&refreshCmd{env: env},
		&historyCmd{env: env},
		&importCmd{env: env},
	}
}

func openFromConfig(dataDir string, verbose bool) (*fundlog.Core, error) {
	if dataDir != "" {
		config.SetRuntimeDataDir(dataDir)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if verbose {
		level = logging.ParseLevel(cfg.LogLevel, slog.LevelInfo)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return fundlog.OpenWithOptions(fundlog.Options{
		DBPath:       cfg.DBPath,
		Logger:       logger,
		SourceURL:    cfg.SourceURL,
		HTTPTimeout:  cfg.FetchTimeout,
		FetchWorkers: cfg.FetchWorkers,
		Location:     cfg.Location(),
	})
}
