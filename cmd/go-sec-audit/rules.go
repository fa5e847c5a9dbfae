package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSEVERITY\tCWE\tTITLE")
		for _, spec := range analyzers.All() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", spec.RuleID, spec.Severity, spec.CWE, spec.Title)
		}
		return tw.Flush()
	},
}
