package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/mirrorcheck/mirrorcheck"
	"github.com/mirrorcheck/mirrorcheck/conformance"
	"github.com/mirrorcheck/mirrorcheck/symtab"
)

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "Run a manifest of mirror pairs against a binary's debug info",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "object",
			Aliases:  []string{"o"},
			Usage:    "Binary carrying both type systems' debug info (ELF, Mach-O, PE, wasm)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "manifest",
			Aliases:  []string{"m"},
			Usage:    "YAML manifest of mirror pairs",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "force-dialect",
			Usage: "Parse mode forced on the session before resolving (c, rust, cxx, none)",
			Value: "cxx",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Also compare recorded alignment and same-named member offsets",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Emit the report as JSON",
		},
		&cli.BoolFlag{
			Name:    "interactive",
			Aliases: []string{"i"},
			Usage:   "Browse the report in a TUI",
		},
	},
	Action: runCheck,
}

func runCheck(cliContext *cli.Context) error {
	manifest, err := conformance.LoadManifest(cliContext.String("manifest"))
	if err != nil {
		return err
	}
	if cliContext.Bool("strict") {
		manifest.Strict = true
	}

	sess, err := openSession(cliContext.String("object"), cliContext.String("force-dialect"))
	if err != nil {
		return err
	}
	defer sess.Close()

	report, err := manifest.Driver(sess).Run(manifest.Registry())
	if err != nil {
		return err
	}

	switch {
	case cliContext.Bool("interactive"):
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		if err := browseReport(report); err != nil {
			return err
		}
	case cliContext.Bool("json"):
		if err := report.WriteJSON(os.Stdout); err != nil {
			return err
		}
	default:
		if err := report.Write(os.Stdout); err != nil {
			return err
		}
	}

	return report.Err()
}

// openSession opens the object and applies the forced parse mode. Passing
// "none" leaves the session unforced, in which case references carrying
// generic syntax fail the run as a dialect misconfiguration.
func openSession(object, force string) (*symtab.Session, error) {
	sess, err := symtab.Open(object)
	if err != nil {
		return nil, err
	}
	if force == "none" || force == "" {
		return sess, nil
	}
	d, ok := mirrorcheck.ParseDialect(force)
	if !ok {
		sess.Close()
		return nil, fmt.Errorf("unknown dialect %q", force)
	}
	if err := sess.ForceDialect(d); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}
