// Package cmd wires the CLI commands together.
package cmd

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"v"},
	Usage:   "Enable debug logging",
}

// Execute builds the root command and runs it against os.Args.
func Execute() error {
	// Pick up credentials from a local .env if present.
	_ = godotenv.Load()

	root := &cli.Command{
		Name:  "imagery",
		Usage: "Query, stitch, and post-process street-level imagery",
		Flags: []cli.Flag{verboseFlag},
		Commands: []*cli.Command{
			newQueryCommand(),
			newConvertCommand(),
			newEnhanceCommand(),
		},
	}

	return root.Run(context.Background(), os.Args)
}
