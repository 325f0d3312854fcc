package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/traxovo/attendance-cli/internal/config"
)

var shiftsCmd = &cobra.Command{
	Use:   "shifts",
	Short: "Print the effective shift schedule",
	Long:  "Shows the default work window and any per-job-site overrides from shifts.yaml. The derived Start Time & Job sheet still takes precedence at classification time.",
	RunE: func(_ *cobra.Command, _ []string) error {
		book, err := config.LoadShifts(cfg.Schedule.ShiftsPath, cfg.Schedule)
		if err != nil {
			return eris.Wrap(err, "shifts: load")
		}

		fmt.Printf("%-32s  %s\n", "JOB SITE", "WINDOW")
		fmt.Printf("%-32s  %s-%s\n", "(default)", book.Default.Start, book.Default.End)

		sites := make([]string, 0, len(book.Sites))
		for site := range book.Sites {
			sites = append(sites, site)
		}
		sort.Strings(sites)
		for _, site := range sites {
			w := book.Resolve(site)
			fmt.Printf("%-32s  %s-%s\n", site, w.Start, w.End)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shiftsCmd)
}
