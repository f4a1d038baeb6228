// Package report renders run reports for the terminal and for machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"gopkg.in/yaml.v3"

	"jobdoctor/src/contracts"
	"jobdoctor/src/sanitize"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted values of Options.Format.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// ErrUnknownFormat is returned for a format not in Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Verbosity selects how much of a run is printed.
type Verbosity int

const (
	// Quiet prints the run summary only.
	Quiet Verbosity = iota - 1
	// Normal prints every problem.
	Normal
	// Verbose adds proposed solutions and repair outcomes.
	Verbose
)

// VerbosityFromFlags maps the CLI flags onto a Verbosity. Quiet wins.
func VerbosityFromFlags(quiet bool, verbose int) Verbosity {
	switch {
	case quiet:
		return Quiet
	case verbose > 0:
		return Verbose
	default:
		return Normal
	}
}

type Options struct {
	Format    string
	Verbosity Verbosity
	// Now is used for relative ages. Defaults to time.Now.
	Now func() time.Time
}

// ValidateFormat checks a format name.
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
}

// Write renders run to w.
func Write(w io.Writer, run *contracts.RunReport, opts Options) error {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	// Quiet machine output carries the run status alone.
	var doc any = run
	if opts.Verbosity == Quiet {
		doc = run.Run
	}

	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, run, opts)
	}
}

type textStyles struct {
	title   lipgloss.Style
	job     lipgloss.Style
	tag     lipgloss.Style
	dim     lipgloss.Style
	ok      lipgloss.Style
	failure lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:   r.NewStyle().Bold(true),
		job:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8AB4F8")),
		tag:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F28B82")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("#9AA0A6")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("#81C995")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EA4335")),
	}
}

func writeText(w io.Writer, run *contracts.RunReport, opts Options) error {
	st := newTextStyles(w)
	var b strings.Builder

	if opts.Verbosity > Quiet {
		for i := range run.Jobs {
			writeJob(&b, st, &run.Jobs[i], opts)
		}
	}
	b.WriteString(summary(run, st))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeJob(b *strings.Builder, st textStyles, j *contracts.JobReport, opts Options) {
	if !j.HasProblems() && opts.Verbosity < Verbose {
		return
	}

	header := st.job.Render(sanitize.Name(j.JobName))
	if j.JobPath != "" && j.JobPath != j.JobName {
		header += " " + st.dim.Render(sanitize.Name(j.JobPath))
	}
	b.WriteString(header + "\n")

	if j.ScanError != "" {
		fmt.Fprintf(b, "  %s %s\n", st.failure.Render("cannot scan:"), sanitize.Name(j.ScanError))
		return
	}

	if opts.Verbosity >= Verbose {
		fmt.Fprintf(b, "  %s\n", st.dim.Render(indexLine(j, opts.Now())))
	}
	if !j.HasProblems() {
		fmt.Fprintf(b, "  %s\n", st.ok.Render("no problems"))
	}

	for i, p := range j.Problems {
		fmt.Fprintf(b, "  %s %s\n", st.tag.Render(p.Tag+":"), sanitize.Name(p.Message))
		if opts.Verbosity < Verbose {
			continue
		}
		for _, s := range j.Solutions {
			if s.Problem != i {
				continue
			}
			fmt.Fprintf(b, "    %s %s\n", st.dim.Render("fix:"), sanitize.Name(s.Message))
			fmt.Fprintf(b, "      %s\n", st.dim.Render("$ "+sanitize.Name(s.Command)))
		}
	}

	if j.Repaired {
		switch {
		case j.RepairError != "":
			fmt.Fprintf(b, "  %s after %s of %d: %s\n", st.failure.Render("repair failed"),
				english.Plural(j.Applied, "repair", ""), len(j.Solutions), sanitize.Name(j.RepairError))
		case opts.Verbosity >= Verbose:
			fmt.Fprintf(b, "  %s\n", st.ok.Render("applied "+english.Plural(j.Applied, "repair", "")))
		}
	}
}

// indexLine describes the size and age of a job's build history.
func indexLine(j *contracts.JobReport, now time.Time) string {
	line := fmt.Sprintf("%s, %s",
		english.Plural(j.NumberedLinks, "numbered link", ""),
		english.Plural(j.DatedDirs, "dated directory", "dated directories"))
	if oldest, err := time.Parse(time.RFC3339, j.OldestBuild); err == nil {
		line += ", oldest build " + humanize.RelTime(oldest, now, "ago", "from now")
	}
	return line
}

// summary is the one-line run summary printed last in text output.
func summary(run *contracts.RunReport, st textStyles) string {
	r := run.Run
	parts := []string{
		english.Plural(r.JobsScanned, "job", "") + " checked",
		humanize.Comma(int64(r.JobsWithProblems)) + " with problems",
		english.Plural(r.ProblemsTotal, "problem", ""),
	}
	if r.RepairFailures > 0 {
		parts = append(parts, st.failure.Render(english.Plural(r.RepairFailures, "failed repair", "")))
	}
	mode := "report"
	if r.Destroy {
		mode = "repair"
	}
	return st.title.Render(fmt.Sprintf("%s (%s mode):", r.RunID, mode)) + " " + strings.Join(parts, ", ")
}
