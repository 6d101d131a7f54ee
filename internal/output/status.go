package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// StatusReport is the read-side view: what the registry holds and how old
// each workflow's last published snapshot is.
type StatusReport struct {
	Endpoint    string           `json:"endpoint" yaml:"endpoint"`
	RecordCount uint64           `json:"record_count" yaml:"record_count"`
	Latest      *LatestRecord    `json:"latest,omitempty" yaml:"latest,omitempty"`
	WriteState  []WorkflowState  `json:"write_state" yaml:"write_state"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
}

// LatestRecord is the registry's most recent entry.
type LatestRecord struct {
	Hash      string    `json:"hash" yaml:"hash"`
	Label     string    `json:"label" yaml:"label"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Submitter string    `json:"submitter" yaml:"submitter"`
}

// WorkflowState is one workflow's local write-state entry.
type WorkflowState struct {
	Workflow      string `json:"workflow" yaml:"workflow"`
	LastPublished string `json:"last_published,omitempty" yaml:"last_published,omitempty"`
	Age           string `json:"age,omitempty" yaml:"age,omitempty"`
}

// Status renders a StatusReport.
func (r *Renderer) Status(st *StatusReport) error {
	switch r.format {
	case FormatJSON:
		return r.writeJSON(st)
	case FormatYAML:
		return r.writeYAML(st)
	default:
		return r.writeStatusText(st)
	}
}

func (r *Renderer) writeStatusText(st *StatusReport) error {
	var sb strings.Builder

	sb.WriteString(r.paint("Registry", color.Bold))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  endpoint: %s\n", st.Endpoint))
	sb.WriteString(fmt.Sprintf("  records:  %d\n", st.RecordCount))
	if st.Latest != nil {
		sb.WriteString(fmt.Sprintf("  latest:   %s  %s  %s\n",
			st.Latest.Label,
			shortHash(st.Latest.Hash),
			st.Latest.Timestamp.UTC().Format(time.RFC3339)))
	}

	sb.WriteString("\n")
	sb.WriteString(r.paint("Write state", color.Bold))
	sb.WriteString("\n")
	if len(st.WriteState) == 0 {
		sb.WriteString("  (empty, nothing published yet)\n")
	}
	for _, ws := range st.WriteState {
		if ws.LastPublished == "" {
			sb.WriteString(fmt.Sprintf("  %-12s %s\n", ws.Workflow, r.paint("never published", color.Faint)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-12s %s  (%s ago)\n", ws.Workflow, ws.LastPublished, ws.Age))
	}

	_, err := fmt.Fprint(r.out, sb.String())
	return err
}
