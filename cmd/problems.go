package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/harmonysearch/internal/problem"
)

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "List the built-in problem catalog",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVARS\tVALUES/VAR\tDESCRIPTION")
		for _, p := range problem.All() {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", p.Name, p.NumVars(), len(p.Domain[0]), p.Description)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(problemsCmd)
}
