package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/mirrorcheck/mirrorcheck/conformance"
	"github.com/mirrorcheck/mirrorcheck/fileserver"
	"github.com/mirrorcheck/mirrorcheck/symtab"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "mirrorcheck",
		Version: version,
		Usage:   "verify that binding mirror types match native compiled layouts",
		Description: `mirrorcheck reads the DWARF debug information of a compiled binary that
carries both a native library and its foreign-function binding, measures the
true in-memory size of each registered mirror pair, and fails when any pair
disagrees. Sizes come from what the compiler emitted, never from either type
system's own reporting.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log internal progress to stderr",
			},
		},
		Before: func(cliContext *cli.Context) error {
			if !cliContext.Bool("debug") {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			symtab.SetLogger(logger)
			conformance.SetLogger(logger)
			fileserver.SetLogger(logger)
			return nil
		},
		Commands: []*cli.Command{
			checkCommand,
			inspectCommand,
			serveCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mirrorcheck: %v\n", err)
		os.Exit(1)
	}
}
