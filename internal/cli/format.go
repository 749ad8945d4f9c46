// Package cli provides the command-line interface for compass.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/compass/internal/domain"
	"github.com/mrz1836/compass/internal/plan"
)

// titler renders enum-style values (task statuses, confidence levels) as
// human-readable headings in text output.
var titler = cases.Title(language.English) //nolint:gochecknoglobals // Stateless formatter

// Output writes command results in the selected output format.
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates an output helper for the given writer and format.
// Unknown formats fall back to text.
func NewOutput(w io.Writer, format string) *Output {
	if !IsValidOutputFormat(format) {
		format = OutputText
	}
	return &Output{w: w, format: format}
}

// IsJSON reports whether the output format is JSON.
func (o *Output) IsJSON() bool {
	return o.format == OutputJSON
}

// JSON writes v as indented JSON followed by a newline.
func (o *Output) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Linef writes one formatted text line.
func (o *Output) Linef(format string, args ...any) {
	fmt.Fprintf(o.w, format+"\n", args...)
}

// Heading writes a title-cased section heading.
func (o *Output) Heading(s string) {
	fmt.Fprintf(o.w, "%s\n", titler.String(s))
}

// TitleCase renders an enum-style value (e.g. "in_progress") as a
// human-readable label ("In Progress").
func TitleCase(s string) string {
	return titler.String(strings.ReplaceAll(s, "_", " "))
}

// writeGraph renders a task graph: tasks in insertion order with status,
// confidence and dependency edges.
func writeGraph(out *Output, g *domain.TaskGraph) {
	out.Linef("Strategy: %s", g.Strategy)
	out.Linef("Goal:     %s", g.Goal)
	out.Linef("Tasks:    %d", len(g.Tasks))
	out.Linef("")
	for _, t := range g.Tasks {
		out.Linef("  [%s] %s", shortID(t.ID), t.Description)
		out.Linef("      type=%s status=%s confidence=%.3f", t.Type, TitleCase(t.Status.String()), t.Confidence)
	}
	if len(g.Dependencies) > 0 {
		out.Linef("")
		out.Heading("dependencies")
		for _, d := range g.Dependencies {
			out.Linef("  %s -> %s (%s)", shortID(d.PredecessorID), shortID(d.SuccessorID), d.Type)
		}
	}
}

// writePlanSummary renders a plan's lifecycle state and task status counts.
func writePlanSummary(out *Output, pl *domain.Plan) {
	r := plan.Summarize(pl)
	out.Linef("Plan:     %s", pl.ID)
	out.Linef("State:    %s", TitleCase(pl.State.String()))
	out.Linef("Tasks:    %d (%d succeeded, %d failed, %d skipped)",
		len(pl.Graph.Tasks), r.Succeeded, r.Failed, r.Skipped)
	out.Linef("Replans:  %d", pl.ReplanCount)
	out.Linef("Created:  %s", pl.CreatedAt.Format("2006-01-02 15:04:05"))
	if pl.CompletedAt != nil {
		out.Linef("Finished: %s", pl.CompletedAt.Format("2006-01-02 15:04:05"))
	}
}

// writeReport renders an execution report including the failure causal chain.
func writeReport(out *Output, r *plan.Report) {
	out.Linef("Attempted:    %d", r.Attempted)
	out.Linef("Succeeded:    %d", r.Succeeded)
	out.Linef("Failed:       %d", r.Failed)
	out.Linef("Skipped:      %d", r.Skipped)
	out.Linef("Failure rate: %.2f", r.FailureRate)
	out.Linef("Replans:      %d", r.Replans)
	if len(r.BySignature) > 0 {
		out.Linef("")
		out.Heading("failures by signature")
		for sig, n := range r.BySignature {
			out.Linef("  %-20s %d", TitleCase(sig.String()), n)
		}
	}
	if len(r.Failures) > 0 {
		out.Linef("")
		out.Heading("failure chain")
		for _, f := range r.Failures {
			out.Linef("  [%s] %s after %d attempts (replanned: %t)",
				shortID(f.TaskID), TitleCase(f.Signature.String()), f.Attempts, f.ReplanAttempted)
		}
	}
}

// writeDecision renders a decision with its explanation trail.
func writeDecision(out *Output, d *domain.Decision) {
	out.Linef("Decision:   %s", d.ID)
	out.Linef("Type:       %s", TitleCase(d.Type.String()))
	out.Linef("Action:     %s", d.Action.Name)
	out.Linef("Confidence: %.3f (%s)", d.ConfidenceScore, TitleCase(d.ConfidenceLevel.String()))
	if d.FiredRule != "" {
		out.Linef("Fired rule: %s", d.FiredRule)
	} else {
		out.Linef("Fired rule: (fallback)")
	}
	out.Linef("Evaluated:  %s", strings.Join(d.EvaluatedRules, ", "))
	if d.RequiresHumanConfirmation {
		out.Linef("Requires human confirmation")
	}
	if d.FlaggedForReview {
		out.Linef("Flagged for review")
	}
}

// writeInsights renders mined insights grouped by category.
func writeInsights(out *Output, insights []domain.Insight) {
	if len(insights) == 0 {
		out.Linef("No insights yet; record some trials first.")
		return
	}
	for _, in := range insights {
		out.Linef("[%s] %s (confidence %.2f, %d trials)",
			TitleCase(in.Category.String()), in.Summary, in.Confidence, len(in.TrialIDs))
	}
}

// shortID truncates a UUID to its first segment for compact text output.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
