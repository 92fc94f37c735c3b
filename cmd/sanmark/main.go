package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches the subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return ExitUsage
	}

	switch args[0] {
	case "check":
		flags, inputs, err := parseCheckFlags(args[1:])
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}

		configureMaxProcs(stderr, flags.verbose)

		if err := runCheck(stdout, stderr, flags, inputs); err != nil {
			fmt.Fprintln(stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess

	case "version", "--version":
		fmt.Fprintf(stdout, "sanmark %s\n", Version)
		return ExitSuccess

	case "help", "--help", "-h":
		runHelp(stdout, args[1:])
		return ExitSuccess

	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}
}

// configureMaxProcs aligns GOMAXPROCS with the container CPU quota.
// Error ignored: maxprocs.Set only fails if the GOMAXPROCS env is
// invalid, in which case Go runtime defaults apply and the program
// continues safely.
func configureMaxProcs(stderr io.Writer, verbose bool) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}
}
