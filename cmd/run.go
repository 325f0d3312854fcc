package main

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/traxovo/attendance-cli/internal/config"
	"github.com/traxovo/attendance-cli/internal/fetcher"
	"github.com/traxovo/attendance-cli/internal/model"
	"github.com/traxovo/attendance-cli/internal/pipeline"
)

var runSync bool

var runCmd = &cobra.Command{
	Use:   "run <date> [date...]",
	Short: "Run the reconciliation pipeline for one or more target dates",
	Long: `Runs the full reconciliation for each target date (YYYY-MM-DD).

Dates are independent runs sharing no state. With --sync, date-stamped
telematics exports are pulled from the configured FTP drop zone first.

Examples:
  attendance-cli run 2025-05-01
  attendance-cli run --sync 2025-05-01 2025-05-02 2025-05-03`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dates, err := parseDates(args)
		if err != nil {
			return err
		}

		shifts, err := config.LoadShifts(cfg.Schedule.ShiftsPath, cfg.Schedule)
		if err != nil {
			return eris.Wrap(err, "run: load shifts")
		}

		st, err := openStore(cmd)
		if err != nil {
			return eris.Wrap(err, "run: open store")
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		var ftpSync *fetcher.FTPSync
		if runSync && cfg.FTP.DropURL != "" {
			ftpSync = fetcher.NewFTPSync(fetcher.FTPOptions{
				User:     cfg.FTP.User,
				Password: cfg.FTP.Password,
				Timeout:  time.Duration(cfg.FTP.TimeoutSecs) * time.Second,
			})
		}

		p := pipeline.New(cfg, shifts, st, ftpSync)

		concurrency := cfg.Pipeline.MaxConcurrentDates
		if concurrency <= 0 {
			concurrency = 1
		}

		g, gCtx := errgroup.WithContext(cmd.Context())
		g.SetLimit(concurrency)

		var mu sync.Mutex
		results := make(map[string]*pipeline.RunResult)
		failures := make(map[string]error)

		for _, date := range dates {
			g.Go(func() error {
				result, runErr := p.Run(gCtx, date)
				mu.Lock()
				defer mu.Unlock()
				if runErr != nil {
					failures[date.Format("2006-01-02")] = runErr
					// Other dates keep running; the workbook fatal is per-run.
					return nil
				}
				results[result.TargetDate] = result
				return nil
			})
		}
		_ = g.Wait()

		printRunSummary(cmd.OutOrStdout(), results, failures)

		if len(failures) > 0 {
			return eris.Errorf("run: %d of %d dates failed", len(failures), len(dates))
		}
		return nil
	},
}

// parseDates validates the positional date arguments.
func parseDates(args []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(args))
	for _, arg := range args {
		d, err := time.ParseInLocation("2006-01-02", arg, time.Local)
		if err != nil {
			return nil, eris.Wrapf(err, "run: invalid date %q (want YYYY-MM-DD)", arg)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func printRunSummary(w io.Writer, results map[string]*pipeline.RunResult, failures map[string]error) {
	dates := make([]string, 0, len(results))
	for d := range results {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, d := range dates {
		r := results[d]
		fmt.Fprintf(w, "%s  parsed=%d matched=%d excluded=%d\n",
			d, r.Stats.TotalDriversParsed, r.Stats.TotalMatched, r.Stats.TotalExcluded)
		for _, status := range model.AllStatuses() {
			if n := r.Stats.ClassificationCounts[status]; n > 0 {
				fmt.Fprintf(w, "    %-12s %d\n", status, n)
			}
		}
		for _, a := range r.Artifacts {
			fmt.Fprintf(w, "    %s: %s (sha256 %.12s)\n", a.Kind, a.Path, a.Checksum)
		}
	}

	failed := make([]string, 0, len(failures))
	for d := range failures {
		failed = append(failed, d)
	}
	sort.Strings(failed)
	for _, d := range failed {
		fmt.Fprintf(w, "%s  FAILED: %v\n", d, failures[d])
		zap.L().Error("run failed", zap.String("date", d), zap.Error(failures[d]))
	}
}

func init() {
	runCmd.Flags().BoolVar(&runSync, "sync", false, "pull telematics exports from the FTP drop zone before running")
	rootCmd.AddCommand(runCmd)
}
