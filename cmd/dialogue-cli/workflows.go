package main

import (
	"fmt"

	"booking-dialogue/internal/dialogue/workflow"

	"github.com/spf13/cobra"
)

var (
	workflowFile    string
	workflowDefault string
)

func init() {
	rootCmd.AddCommand(workflowsCmd)
	workflowsCmd.AddCommand(workflowsValidateCmd)

	workflowsValidateCmd.Flags().StringVar(&workflowFile, "file", "configs/workflows.yaml", "workflow definition file")
	workflowsValidateCmd.Flags().StringVar(&workflowDefault, "default", workflow.DefaultType, "workflow used for unknown types")
}

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "Inspect workflow definitions",
}

var workflowsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compile a workflow definition file and list its steps",
	Long: `Compiles every workflow in the file together with the built-in ones.
A definition is rejected when a step points to an undefined step, when
the start step is missing, or when an intent branch has no "unknown" entry.

Example:
  dialogue-cli workflows validate --file configs/workflows.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := workflow.LoadRegistry(workflowFile, workflowDefault)
		if err != nil {
			return fmt.Errorf("%s: %w", workflowFile, err)
		}

		out := cmd.OutOrStdout()
		for _, typ := range registry.Types() {
			wf := registry.Workflow(typ)
			marker := ""
			if typ == registry.DefaultType() {
				marker = " (default)"
			}
			fmt.Fprintf(out, "%s%s: %d steps, start %s\n", typ, marker, len(wf.Steps()), wf.Start())
			for _, step := range wf.Steps() {
				kind := "->"
				if wf.Branches(step) {
					kind = "=>"
				}
				fmt.Fprintf(out, "  %s %s\n", kind, step)
			}
		}
		fmt.Fprintln(out, "ok")
		return nil
	},
}
