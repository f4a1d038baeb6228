package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"gopkg.in/yaml.v3"

	"jobdoctor/src/contracts"
	"jobdoctor/src/sanitize"
)

// WriteRuns renders a list of runs, newest first, as recorded in the store.
func WriteRuns(w io.Writer, runs []contracts.RunStatus, opts Options) error {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if runs == nil {
		runs = []contracts.RunStatus{}
	}

	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(runs); err != nil {
			return err
		}
		return enc.Close()
	}

	st := newTextStyles(w)
	var b strings.Builder
	if len(runs) == 0 {
		b.WriteString(st.dim.Render("no runs recorded") + "\n")
	}
	for i := range runs {
		b.WriteString(runLine(&runs[i], st, opts.Now()) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func runLine(r *contracts.RunStatus, st textStyles, now time.Time) string {
	mode := "report"
	if r.Destroy {
		mode = "repair"
	}

	status := r.Status
	switch r.Status {
	case contracts.StatusCompleted:
		status = st.ok.Render(status)
	case contracts.StatusFailed:
		status = st.failure.Render(status)
	}

	line := fmt.Sprintf("%s  %s  %s  %s checked, %d with problems, %s",
		st.title.Render(r.RunID), status, mode,
		english.Plural(r.JobsScanned, "job", ""), r.JobsWithProblems,
		english.Plural(r.ProblemsTotal, "problem", ""))
	if r.RepairFailures > 0 {
		line += ", " + st.failure.Render(english.Plural(r.RepairFailures, "failed repair", ""))
	}
	if started, err := time.Parse(time.RFC3339, r.StartedAt); err == nil {
		line += "  " + st.dim.Render("started "+humanize.RelTime(started, now, "ago", "from now"))
	}
	if len(r.Roots) > 0 {
		roots := make([]string, len(r.Roots))
		for i, root := range r.Roots {
			roots[i] = sanitize.Name(root)
		}
		line += "  " + st.dim.Render(strings.Join(roots, " "))
	}
	return line
}
