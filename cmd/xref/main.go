package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/xref/internal"
	pkgconfig "github.com/starford/xref/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitOK       = 0
	exitDangling = 1
	exitFatal    = 2
)

type runFunc func(ctx context.Context, opts ...internal.Option) error

func check(ctx context.Context, opts ...internal.Option) error {
	_, err := internal.Check(ctx, opts...)
	return err
}

// action loads the configuration, applies flag overrides and hands off to run.
func action(stdout io.Writer, run runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		if root := cmd.Args().First(); root != "" {
			cfg.Corpus.Root = root
		}
		if entries := cmd.StringSlice("entry"); len(entries) > 0 {
			cfg.Corpus.EntryPoints = entries
		}
		if cmd.IsSet("format") {
			cfg.Report.Format = cmd.String("format")
		}
		if cmd.IsSet("workers") {
			cfg.Corpus.Workers = int(cmd.Int("workers"))
		}
		if cmd.IsSet("export-db") {
			cfg.Index.Path = cmd.String("export-db")
		}
		if cmd.IsSet("port") {
			cfg.HTTP.Port = int(cmd.Int("port"))
		}
		if cmd.IsSet("log-level") {
			if err := cfg.App.LogLevel.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
		}
		if err := pkgconfig.Validate(cfg); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		return run(ctx,
			internal.WithConfig(cfg),
			internal.WithStdout(stdout),
			internal.WithVersion(version),
		)
	}
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xref",
		Usage:     "Check cross-references between Markdown documents",
		Version:   version,
		ArgsUsage: "[ROOT]",
		Action:    action(stdout, check),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("XREF_CONFIG_FILE"),
			},
			&cli.StringSliceFlag{
				Name:    "entry",
				Aliases: []string{"e"},
				Usage:   "Document exempt from the orphan check (repeatable)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: text or json",
				Value:   "text",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel document loaders (0 means one per CPU)",
			},
			&cli.StringFlag{
				Name:  "export-db",
				Usage: "Write the reference graph to this SQLite file",
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP port for serve",
				Value:   8080,
				Sources: cli.EnvVars("XREF_PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn or error",
				Sources: cli.EnvVars("XREF_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Print the link report once (default)",
				ArgsUsage: "[ROOT]",
				Action:    action(stdout, check),
			},
			{
				Name:      "watch",
				Usage:     "Re-check whenever a document changes",
				ArgsUsage: "[ROOT]",
				Action:    action(stdout, internal.Watch),
			},
			{
				Name:      "serve",
				Usage:     "Serve the report over HTTP with live updates",
				ArgsUsage: "[ROOT]",
				Action:    action(stdout, internal.Serve),
			},
			{
				Name:      "mcp",
				Usage:     "Serve link tools over MCP stdio",
				ArgsUsage: "[ROOT]",
				Action:    action(stdout, internal.ServeMCP),
			},
		},
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, internal.ErrDanglingLinks):
		return exitDangling
	default:
		return exitFatal
	}
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newCommand(stdout).Run(ctx, args)
	if err != nil && !errors.Is(err, internal.ErrDanglingLinks) {
		fmt.Fprintf(stderr, "xref: %v\n", err)
	}
	return exitCode(err)
}

func main() {
	os.Exit(runMain(context.Background(), os.Args, os.Stdout, os.Stderr))
}
