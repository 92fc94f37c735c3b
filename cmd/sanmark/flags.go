package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// checkFlags holds all flags for the check command. Zero values mean
// "not set": config file values fill them in, then explicit flags win.
type checkFlags struct {
	config    string
	workers   int
	chunkSize int
	timeout   string
	format    string
	strict    bool
	quiet     bool
	verbose   bool

	// set records which flags were given explicitly so config file
	// values do not clobber them.
	set map[string]bool
}

// parseCheckFlags parses check command flags and returns the positional
// input paths.
func parseCheckFlags(args []string) (*checkFlags, []string, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	f := &checkFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.IntVar(&f.chunkSize, "chunk-size", 0, "lines per chunk (0 = adaptive)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-chunk timeout (e.g., 30s, 2m)")
	fs.StringVarP(&f.format, "format", "f", "", "report format: text, yaml")
	fs.BoolVar(&f.strict, "strict", false, "treat warnings as failures")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show pool sizing and timing")

	fs.Usage = func() { printCheckUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	return f, fs.Args(), nil
}
