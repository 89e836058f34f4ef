package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"redditactions/pkg/processor"
)

// Printer writes styled, human-oriented output. Structured logs go through
// the logger package instead.
type Printer struct {
	out   io.Writer
	style styles
	quiet bool
}

// NewPrinter creates a Printer writing to out
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:   out,
		style: newStyles(lipgloss.NewRenderer(out)),
	}
}

// std reports errors that happen outside a run, such as flag parsing
var std = NewPrinter(os.Stderr)

// SetQuiet suppresses per-item lines; errors and the summary still print
func (p *Printer) SetQuiet(quiet bool) { p.quiet = quiet }

// Error prints an error message, with an optional cause
func (p *Printer) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(p.out, p.style.err.Render(msg))
}

func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.out, p.style.success.Render(msg))
}

func (p *Printer) Info(label, value string) {
	fmt.Fprintf(p.out, "%s: %s\n", p.style.label.Render(label), p.style.value.Render(value))
}

func (p *Printer) Warning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(p.out, p.style.warning.Render(msg))
}

func (p *Printer) Highlight(msg string) {
	fmt.Fprintln(p.out, p.style.highlight.Render(msg))
}

// Item prints one line per processed item
func (p *Printer) Item(res processor.ItemResult) {
	if p.quiet {
		return
	}

	title := res.Item.Title
	if title == "" {
		title = res.Item.URL
	}

	var marker string
	switch res.Outcome {
	case processor.OutcomeForwarded:
		marker = p.style.success.Render("sent   ")
	case processor.OutcomeDryRun:
		marker = p.style.highlight.Render("would  ")
	case processor.OutcomeSkipped:
		marker = p.style.dim.Render("skip   ")
	default:
		marker = p.style.err.Render("FAILED ")
	}

	line := fmt.Sprintf("%s %s %s", marker, p.style.dim.Render("r/"+res.Item.Subreddit), title)
	if res.Outcome == processor.OutcomeSkipped && res.Reason != "" {
		line += p.style.dim.Render(" (" + res.Reason + ")")
	}
	fmt.Fprintln(p.out, line)
}

// Summary prints run totals and lists every failed item individually
func (p *Printer) Summary(report *processor.Report) {
	if report == nil {
		return
	}

	rows := []string{
		fmt.Sprintf("%s %d", p.style.label.Render("Examined: "), report.Examined),
		fmt.Sprintf("%s %d", p.style.label.Render("Forwarded:"), report.Forwarded),
		fmt.Sprintf("%s %d", p.style.label.Render("Skipped:  "), report.Skipped),
	}
	if report.DryRun > 0 {
		rows = append(rows, fmt.Sprintf("%s %d", p.style.label.Render("Dry run:  "), report.DryRun))
	}
	rows = append(rows, fmt.Sprintf("%s %d", p.style.label.Render("Failed:   "), report.Failed))
	if report.Interrupted {
		rows = append(rows, p.style.warning.Render("Interrupted: remaining items stay saved"))
	}

	fmt.Fprintln(p.out, p.style.panel.Render(strings.Join(rows, "\n")))

	failures := report.Failures()
	if len(failures) == 0 {
		return
	}

	fmt.Fprintln(p.out, p.style.err.Render(fmt.Sprintf("%d item(s) need attention:", len(failures))))
	for _, f := range failures {
		what := "not forwarded, still saved"
		if f.Outcome == processor.OutcomeUnsaveFailed {
			what = "forwarded but still saved"
		}
		fmt.Fprintf(p.out, "  - %s %s (%s)\n", f.Item.ID, f.Item.URL, what)
		if f.Err != nil {
			fmt.Fprintf(p.out, "    %s\n", p.style.dim.Render(f.Err.Error()))
		}
	}
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) { std.Error(msg, args...) }
