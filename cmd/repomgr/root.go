package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wgergely/repository-manager/internal/registry"
	"github.com/wgergely/repository-manager/internal/rpcapi"
)

// Version is set at build time or defaults to development version.
var Version = "0.1.0"

var rootFlagRoot string

var rootCmd = &cobra.Command{
	Use:     "repomgr",
	Short:   "Layered-configuration resolver and projection engine for AI-assistant tool configs",
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlagRoot, "root", ".", "repository root")
	rootCmd.SetVersionTemplate("repomgr v{{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError{err}
	})
	registry.MustRegisterBuiltins()
}

// Execute runs the root command, translating errors into the exit-code
// convention: 0 success, 1 operation failure, 64 usage error. `check`
// overrides this with its own 0/2 convention on success paths. Cobra's own
// arg-count/flag-parsing failures are reported before a command's RunE ever
// runs, so they are wrapped as usageError at the point cobra surfaces them
// rather than inside each RunE.
func Execute() {
	for _, cmd := range rootCmd.Commands() {
		wrapArgsAsUsageError(cmd)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if _, ok := err.(usageError); ok {
			os.Exit(64)
		}
		os.Exit(1)
	}
}

// wrapArgsAsUsageError marks a command's positional-arg validation failures
// as usage errors, recursing into subcommands (e.g. "branch add").
func wrapArgsAsUsageError(cmd *cobra.Command) {
	if cmd.Args != nil {
		inner := cmd.Args
		cmd.Args = func(c *cobra.Command, args []string) error {
			if err := inner(c, args); err != nil {
				return usageError{err}
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands() {
		wrapArgsAsUsageError(sub)
	}
}

// usageError marks an error that should exit 64 (malformed invocation)
// rather than 1 (the operation itself failed).
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }

func coreForRoot() rpcapi.Core {
	return rpcapi.New(rootFlagRoot)
}
