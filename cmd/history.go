package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs from the run-history store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return eris.Wrap(err, "history: open store")
		}
		if st == nil {
			return eris.New("history: run-history store is disabled (store.driver=none)")
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return eris.Wrap(err, "history: list runs")
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		fmt.Printf("%-36s  %-10s  %-8s  %s\n", "RUN ID", "DATE", "STATUS", "SUMMARY")
		for _, run := range runs {
			summary := run.Error
			if run.Stats != nil {
				summary = fmt.Sprintf("parsed=%d matched=%d excluded=%d",
					run.Stats.TotalDriversParsed, run.Stats.TotalMatched, run.Stats.TotalExcluded)
			}
			fmt.Printf("%-36s  %-10s  %-8s  %s\n", run.ID, run.TargetDate, run.Status, summary)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(historyCmd)
}
