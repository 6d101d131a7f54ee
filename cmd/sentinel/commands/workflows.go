package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbital-sentinel/sentinel/internal/output"
	"github.com/orbital-sentinel/sentinel/internal/workflow"
)

func newWorkflowsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List workflows with their canonical tuple schemas",
		Long: `Workflows prints every registered workflow with its canonical tuple
layout: field order, fixed-point scale factors and schema version. These are
the exact inputs to each published hash; a verifier needs nothing else.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), output.WorkflowListing(workflow.All()))
		},
	}
}
