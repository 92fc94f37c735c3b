package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sanmark <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  check      Compile markup files and report validation issues")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'sanmark help <command>' for details on a specific command.")
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sanmark check [flags] <file.san> [more files...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compile san-markup files and report validation issues.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --chunk-size <n>      Lines per chunk (0 = adaptive)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-chunk timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -f, --format <s>          Report format: text, yaml")
	fmt.Fprintln(w, "      --strict              Treat warnings as failures")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show pool sizing and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  clean document")
	fmt.Fprintln(w, "  2  invalid flags, config, or ruleset")
	fmt.Fprintln(w, "  3  input file missing or unreadable")
	fmt.Fprintln(w, "  4  document has validation errors")
}

// runHelp shows help for a specific command, or the main usage.
func runHelp(w io.Writer, args []string) {
	if len(args) > 0 && args[0] == "check" {
		printCheckUsage(w)
		return
	}
	printUsage(w)
}
