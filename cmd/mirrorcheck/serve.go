package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mirrorcheck/mirrorcheck/fileserver"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Serve a directory of build artifacts over HTTP",
	Description: `A trivial static file server for loading locally built wasm artifacts in a
browser. It has no connection to the checker beyond living in the same tool.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Directory to serve",
			Value: ".",
		},
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "Listen address",
			Value:   fileserver.DefaultAddr,
		},
	},
	Action: runServe,
}

func runServe(cliContext *cli.Context) error {
	srv := fileserver.New(cliContext.String("dir")).
		WithAddr(cliContext.String("addr"))
	fmt.Printf("serving %s at %s\n", cliContext.String("dir"), srv.Addr())
	return srv.ListenAndServe()
}
