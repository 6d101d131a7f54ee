// Package output renders cycle and status results for humans and for
// automation. Text is the interactive default; json and yaml carry the same
// data for dashboards and scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// Format selects the rendering of a report.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Renderer writes reports in one format to one destination.
type Renderer struct {
	out     io.Writer
	format  Format
	noColor bool
	width   int
}

// NewRenderer builds a Renderer. Width comes from the terminal when out is
// one; otherwise the 80-column fallback keeps piped output stable.
func NewRenderer(out io.Writer, format Format, noColor bool) *Renderer {
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return &Renderer{out: out, format: format, noColor: noColor, width: width}
}

// CycleReport renders one cycle's results.
func (r *Renderer) CycleReport(report *types.CycleReport) error {
	switch r.format {
	case FormatJSON:
		return r.writeJSON(report)
	case FormatYAML:
		return r.writeYAML(report)
	default:
		return r.writeCycleText(report)
	}
}

func (r *Renderer) writeJSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) writeYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.out.Write(data)
	return err
}

func (r *Renderer) writeCycleText(report *types.CycleReport) error {
	var sb strings.Builder

	title := fmt.Sprintf("Assessment cycle %s", shortID(report.RunID))
	if report.DryRun {
		title += " (dry run)"
	}
	sb.WriteString(r.paint(title, color.Bold))
	sb.WriteString("\n")
	sb.WriteString(r.rule())
	sb.WriteString("\n")

	for _, res := range report.Results {
		sb.WriteString(r.resultLine(res))
		sb.WriteString("\n")
	}

	sb.WriteString(r.rule())
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s in %s\n", report.Summary(), report.Duration.Round(time.Millisecond)))

	_, err := io.WriteString(r.out, sb.String())
	return err
}

func (r *Renderer) resultLine(res types.WorkflowResult) string {
	var status string
	switch res.Outcome {
	case types.OutcomePublished:
		status = r.paint("published", color.FgGreen)
	case types.OutcomeDryRun:
		status = r.paint("dry-run", color.FgCyan)
	case types.OutcomeSkipped:
		status = r.paint("skipped", color.FgYellow)
	default:
		status = r.paint("failed", color.FgRed)
	}

	line := fmt.Sprintf("  %-12s %s", res.WorkflowKey, status)
	switch {
	case res.Outcome == types.OutcomePublished && res.Proof != nil:
		line += fmt.Sprintf("  %s  block %d  %s",
			res.RiskLabel, res.Proof.BlockNumber, shortHash(res.Proof.TxHash.Hex()))
	case res.Outcome == types.OutcomeDryRun:
		line += fmt.Sprintf("  %s  %s", res.RiskLabel, shortHash(res.SnapshotHash))
	case res.Reason != "":
		line += "  " + r.paint(res.Reason, color.Faint)
	}
	return line
}

func (r *Renderer) rule() string {
	n := r.width
	if n > 72 {
		n = 72
	}
	if n < 16 {
		n = 16
	}
	return r.paint(strings.Repeat("-", n), color.Faint)
}

func (r *Renderer) paint(s string, attrs ...color.Attribute) string {
	if r.noColor {
		return s
	}
	return color.New(attrs...).Sprint(s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortHash(h string) string {
	if len(h) > 14 {
		return h[:10] + "…" + h[len(h)-4:]
	}
	return h
}
