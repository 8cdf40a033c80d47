package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mirrorcheck/mirrorcheck"
)

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Measure a single type reference",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "object",
			Aliases:  []string{"o"},
			Usage:    "Binary to read debug info from",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "ref",
			Aliases:  []string{"r"},
			Usage:    "Type reference, e.g. ZydisDecoder or zydis::ffi::EncoderOperand.reg",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "dialect",
			Aliases: []string{"d"},
			Usage:   "Dialect the reference is written in (c, rust, cxx)",
			Value:   "c",
		},
		&cli.StringFlag{
			Name:  "force-dialect",
			Usage: "Parse mode forced on the session before resolving (c, rust, cxx, none)",
			Value: "cxx",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Emit the measurement as JSON",
		},
	},
	Action: runInspect,
}

func runInspect(cliContext *cli.Context) error {
	dialect, ok := mirrorcheck.ParseDialect(cliContext.String("dialect"))
	if !ok {
		return fmt.Errorf("unknown dialect %q", cliContext.String("dialect"))
	}

	sess, err := openSession(cliContext.String("object"), cliContext.String("force-dialect"))
	if err != nil {
		return err
	}
	defer sess.Close()

	m, err := sess.Measure(cliContext.String("ref"), dialect)
	if err != nil {
		return err
	}

	if cliContext.Bool("json") {
		return writeMeasurementJSON(os.Stdout, m)
	}

	fmt.Printf("%s (%s)\n", m.Ref, m.Dialect)
	fmt.Printf("  size: %d bytes\n", m.Size)
	if m.Align != 0 {
		fmt.Printf("  align: %d\n", m.Align)
	}
	if len(m.Members) > 0 {
		fmt.Println("  members:")
		for _, f := range m.Members {
			name := f.Name
			if name == "" {
				name = "<anonymous>"
			}
			fmt.Printf("    %4d  %-24s %d bytes\n", f.Offset, name, f.Size)
		}
	}
	return nil
}

type jsonMember struct {
	Name   string `json:"name,omitempty"`
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
}

func writeMeasurementJSON(w io.Writer, m mirrorcheck.Measurement) error {
	doc := struct {
		Ref     string       `json:"ref"`
		Dialect string       `json:"dialect"`
		Size    uint64       `json:"size"`
		Align   uint64       `json:"align,omitempty"`
		Members []jsonMember `json:"members,omitempty"`
	}{
		Ref:     m.Ref,
		Dialect: m.Dialect.String(),
		Size:    m.Size,
		Align:   m.Align,
	}
	for _, f := range m.Members {
		doc.Members = append(doc.Members, jsonMember{Name: f.Name, Offset: f.Offset, Size: f.Size})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
