// Command hashvec hashes raw feature records into sparse vectors and stores
// them as vector blobs.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/hashvec/internal/logger"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	out io.Writer
	log *zap.Logger

	logLevel  string
	logFormat string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "hashvec",
		Short:         "Feature hashing and interaction combination for sparse linear models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logger.New(logger.Config{Level: a.logLevel, Encoding: a.logFormat})
			if err != nil {
				return err
			}
			a.log = l

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log encoding (console or json)")

	root.AddCommand(
		a.newHashCmd(),
		a.newEncodeCmd(),
		a.newInspectCmd(),
		a.newVersionCmd(),
	)

	return root
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hashvec version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.out, "hashvec %s\n", version)
			return err
		},
	}
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hashvec: %v\n", err)
		os.Exit(1)
	}
}
