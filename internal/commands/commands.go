// Package commands holds what the mateform subcommands share: the global
// flags and the per-run logger.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/logger"
	"github.com/urfave/cli/v3"
)

const (
	FlagDebug   = "debug"
	FlagVerbose = "verbose"
)

// GlobalFlags are declared on the root command.
func GlobalFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  FlagDebug,
			Usage: t.GetMessage("flags.debug_usage", 0, nil),
		},
		&cli.BoolFlag{
			Name:    FlagVerbose,
			Aliases: []string{"V"},
			Usage:   t.GetMessage("flags.verbose_usage", 0, nil),
		},
	}
}

// Context returns ctx carrying a logger configured from the global flags.
func Context(ctx context.Context, cmd *cli.Command) context.Context {
	l := logger.New(os.Stderr, cmd.Bool(FlagDebug), cmd.Bool(FlagVerbose))
	return logger.WithLogger(ctx, l)
}

// Output is where a command prints its results.
func Output(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// FlagComplete lists every flag of cmd for shell completion, including the
// help flag and single-letter aliases.
func FlagComplete(_ context.Context, cmd *cli.Command) {
	out := Output(cmd)
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if len(name) == 1 {
				_, _ = fmt.Fprintln(out, "-"+name)
			} else {
				_, _ = fmt.Fprintln(out, "--"+name)
			}
		}
	}
}
