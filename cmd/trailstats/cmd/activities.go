package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/planbiir/trailstats/internal/activity"
	"github.com/planbiir/trailstats/internal/export"
	"github.com/planbiir/trailstats/internal/report"
)

type activitiesFlags struct {
	input  string
	group  string
	outDir string
	trend  string
	kind   string
	dryRun bool
}

func newActivitiesCmd(a *app) *cobra.Command {
	f := &activitiesFlags{}

	cmd := &cobra.Command{
		Use:   "activities -i activities.csv",
		Short: "Summarise a bulk activity export and write cumulative totals",
		Example: `  trailstats activities -i activities.csv
  trailstats activities -i activities.csv --group year --out data
  trailstats activities -i activities.csv --trend distance:elevation --type running`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivities(cmd, a, f)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "activity export CSV")
	cmd.Flags().StringVarP(&f.group, "group", "g", activity.GroupType, "cumulative grouping: type or year")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "output directory (default: output_dir from config)")
	cmd.Flags().StringVar(&f.trend, "trend", "", "fit a line through two columns, as x:y")
	cmd.Flags().StringVar(&f.kind, "type", "", "restrict --trend to one activity type")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print totals without writing files")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runActivities(cmd *cobra.Command, a *app, f *activitiesFlags) error {
	file, err := os.Open(f.input)
	if err != nil {
		return fmt.Errorf("failed to open activity export: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	rows, err := activity.Load(file)
	if err != nil {
		return err
	}
	acts := activity.Prepare(rows, a.cfg.ActivityTypes)
	a.logger.Info("activities loaded",
		zap.String("path", f.input),
		zap.Int("rows", len(rows)),
		zap.Int("kept", len(acts)))

	cumulative, err := activity.Cumulative(acts, f.group)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report.Activities(out, activity.Totals(acts))

	if f.trend != "" {
		x, y, ok := strings.Cut(f.trend, ":")
		if !ok {
			return fmt.Errorf("--trend must be x:y, got %q", f.trend)
		}
		trend, err := activity.FitTrend(acts, f.kind, x, y)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s = %.3f + %.3f * %s (n=%d)\n", y, trend.Intercept, trend.Slope, x, trend.N)
	}

	if f.dryRun {
		return nil
	}

	outDir := f.outDir
	if outDir == "" {
		outDir = a.cfg.OutputDir
	}
	path := filepath.Join(outDir, "activities_cum_by_"+f.group+".csv")
	if err := export.WriteFile(path, func(w io.Writer) error {
		return export.WriteCumulative(w, cumulative)
	}); err != nil {
		return err
	}

	a.logger.Info("cumulative activities written", zap.String("out", path))
	return nil
}
