package main

import (
	"fmt"
	"io"

	sanmark "github.com/ymitsu/sanmark"
	"github.com/ymitsu/sanmark/internal/yamlutil"
)

// report is the per-file check result rendered to the user.
type report struct {
	File     string        `yaml:"file"`
	Blocks   int           `yaml:"blocks"`
	Errors   int           `yaml:"errors"`
	Warnings int           `yaml:"warnings"`
	Issues   []reportIssue `yaml:"issues"`
}

// reportIssue mirrors sanmark.ValidationIssue with a stable string
// severity for serialized output.
type reportIssue struct {
	Line       int    `yaml:"line,omitempty"`
	Severity   string `yaml:"severity"`
	Code       string `yaml:"code"`
	Message    string `yaml:"message"`
	Suggestion string `yaml:"suggestion,omitempty"`
}

// buildReport converts a compiled document into the printable report.
// quiet drops everything below error severity.
func buildReport(file string, doc *sanmark.Document, quiet bool) report {
	rep := report{
		File:     file,
		Blocks:   len(doc.Blocks),
		Errors:   doc.ErrorCount(),
		Warnings: doc.WarningCount(),
	}
	for _, issue := range doc.Issues {
		if quiet && issue.Severity != sanmark.SeverityError {
			continue
		}
		rep.Issues = append(rep.Issues, reportIssue{
			Line:       issue.Line,
			Severity:   issue.Severity.String(),
			Code:       issue.Code,
			Message:    issue.Message,
			Suggestion: issue.Suggestion,
		})
	}
	return rep
}

// printTextReport writes the classic compiler-style listing:
// file:line: severity CODE: message.
func printTextReport(w io.Writer, rep report) error {
	for _, issue := range rep.Issues {
		if issue.Line > 0 {
			fmt.Fprintf(w, "%s:%d: %s %s: %s\n", rep.File, issue.Line, issue.Severity, issue.Code, issue.Message)
		} else {
			fmt.Fprintf(w, "%s: %s %s: %s\n", rep.File, issue.Severity, issue.Code, issue.Message)
		}
		if issue.Suggestion != "" {
			fmt.Fprintf(w, "  suggestion: %s\n", issue.Suggestion)
		}
	}

	switch {
	case rep.Errors > 0 || rep.Warnings > 0:
		fmt.Fprintf(w, "%s: %d blocks, %d errors, %d warnings\n", rep.File, rep.Blocks, rep.Errors, rep.Warnings)
	default:
		fmt.Fprintf(w, "%s: %d blocks, clean\n", rep.File, rep.Blocks)
	}
	return nil
}

// printYAMLReport writes the report as a YAML document.
func printYAMLReport(w io.Writer, rep report) error {
	data, err := yamlutil.Marshal(rep)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "---")
	_, err = w.Write(data)
	return err
}
