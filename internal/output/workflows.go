package output

import (
	"fmt"
	"strings"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/workflow"
)

// WorkflowListing renders the canonical schema of every workflow as plain
// text. The listing is the operator-facing statement of what goes into each
// hash: field order, scale factors and schema versions. Deliberately
// uncolored and stable so it can be diffed and golden-tested.
func WorkflowListing(workflows []workflow.Workflow) string {
	var sb strings.Builder

	for i, w := range workflows {
		if i > 0 {
			sb.WriteString("\n")
		}
		s := w.Schema()
		sb.WriteString(fmt.Sprintf("%s (schema v%d, %s)\n", w.Key(), s.Version, w.SourceFile()))
		sb.WriteString("  uint256 timestamp\n")
		sb.WriteString("  string  workflowName\n")
		sb.WriteString("  string  riskLabel\n")
		for _, f := range s.Fields {
			sb.WriteString("  uint256 " + f.Name + scaleSuffix(f) + "\n")
		}
	}

	return sb.String()
}

func scaleSuffix(f encoding.Field) string {
	var parts []string
	if f.Scale != encoding.Scale1 {
		parts = append(parts, fmt.Sprintf("x%d", f.Scale))
	}
	if f.Round == encoding.Truncate {
		parts = append(parts, "truncated")
	}
	if len(parts) == 0 {
		return ""
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}
