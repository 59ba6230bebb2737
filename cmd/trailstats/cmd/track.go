package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/planbiir/trailstats/internal/export"
	"github.com/planbiir/trailstats/internal/gpx"
	"github.com/planbiir/trailstats/internal/merge"
	"github.com/planbiir/trailstats/internal/metrics"
	"github.com/planbiir/trailstats/internal/pipeline"
	"github.com/planbiir/trailstats/internal/report"
	"github.com/planbiir/trailstats/internal/tz"
)

type trackFlags struct {
	inputs    []string
	outDir    string
	fillFrom  string
	clean     bool
	writeGPX  bool
	geoJSON   bool
	dryRun    bool
	showStats bool
	statsJSON bool
}

func newTrackCmd(a *app) *cobra.Command {
	f := &trackFlags{}

	cmd := &cobra.Command{
		Use:   "track -i file.gpx [-i other.gpx]",
		Short: "Build per-point, smoothed and per-kilometer tables for GPX tracks",
		Example: `  trailstats track -i morning.gpx
  trailstats track -i a.gpx -i b.gpx --out data --geojson
  trailstats track -i watch.gpx --fill-from phone.gpx --clean --stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(cmd, a, f)
		},
	}

	cmd.Flags().StringSliceVarP(&f.inputs, "input", "i", nil, "input GPX file (repeatable)")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "output directory (default: output_dir from config)")
	cmd.Flags().StringVar(&f.fillFrom, "fill-from", "", "second recording used to fill gaps in a single input")
	cmd.Flags().BoolVar(&f.clean, "clean", false, "remove GPS outliers before profiling")
	cmd.Flags().BoolVar(&f.writeGPX, "write-gpx", false, "write the profiled points as <input>_cleaned.gpx")
	cmd.Flags().BoolVar(&f.geoJSON, "geojson", false, "also write a GeoJSON map of each track")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print tables without writing files")
	cmd.Flags().BoolVar(&f.showStats, "stats", false, "show cleaning and gap-fill statistics")
	cmd.Flags().BoolVar(&f.statsJSON, "stats-json", false, "output statistics as JSON")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runTrack(cmd *cobra.Command, a *app, f *trackFlags) error {
	if f.fillFrom != "" && len(f.inputs) != 1 {
		return fmt.Errorf("--fill-from needs exactly one input, got %d", len(f.inputs))
	}
	if !f.dryRun {
		if err := uniqueBases(f.inputs); err != nil {
			return err
		}
	}

	opts, err := pipeline.OptionsFromConfig(a.cfg)
	if err != nil {
		return err
	}
	if f.clean {
		opts.Clean = true
	}

	zones, err := tz.NewDefaultResolver()
	if err != nil {
		return err
	}
	recorder := metrics.New()
	p := pipeline.New(opts, zones, recorder, a.logger)

	var results []*pipeline.Result
	if f.fillFrom != "" {
		res, err := p.ProcessMerged(cmd.Context(), f.inputs[0], f.fillFrom, merge.DefaultConfig())
		if err != nil {
			return err
		}
		results = []*pipeline.Result{res}
	} else {
		results, err = p.ProcessFiles(cmd.Context(), f.inputs)
		if err != nil {
			return err
		}
	}

	outDir := f.outDir
	if outDir == "" {
		outDir = a.cfg.OutputDir
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		report.Splits(out, filepath.Base(res.Source), res.Summary)

		if f.showStats || f.statsJSON {
			if err := printStats(out, res, f.statsJSON); err != nil {
				return err
			}
		}
		if f.dryRun {
			continue
		}
		if err := writeTrack(outDir, res, f); err != nil {
			return err
		}
		a.logger.Info("track written",
			zap.String("path", res.Source),
			zap.String("out", outDir))
	}

	if f.dryRun {
		fmt.Fprintln(out, "Dry run completed - no files written")
	}

	if a.cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(a.cfg.MetricsFile); err != nil {
			return err
		}
	}
	return nil
}

// uniqueBases rejects inputs whose outputs would share file names.
func uniqueBases(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		base := trackBase(path)
		if other, ok := seen[base]; ok {
			return fmt.Errorf("inputs %s and %s would both write %s_*.csv", other, path, base)
		}
		seen[base] = path
	}
	return nil
}

func trackBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

type outputFile struct {
	name  string
	write func(io.Writer) error
}

func writeTrack(outDir string, res *pipeline.Result, f *trackFlags) error {
	base := trackBase(res.Source)

	files := []outputFile{
		{base + "_records.csv", func(w io.Writer) error { return export.WriteRecords(w, res.Records) }},
		{base + "_smoothed.csv", func(w io.Writer) error { return export.WriteSmoothed(w, res.Smoothed) }},
		{base + "_km.csv", func(w io.Writer) error { return export.WriteSummary(w, res.Summary) }},
	}
	if f.geoJSON {
		files = append(files, outputFile{base + ".geojson", func(w io.Writer) error {
			return json.NewEncoder(w).Encode(export.TrackGeoJSON(res.Records))
		}})
	}

	for _, file := range files {
		if err := export.WriteFile(filepath.Join(outDir, file.name), file.write); err != nil {
			return err
		}
	}

	if f.writeGPX {
		ext := filepath.Ext(res.Source)
		target := strings.TrimSuffix(res.Source, ext) + "_cleaned" + ext
		if err := gpx.Write(target, res.GPX, res.Points); err != nil {
			return err
		}
	}
	return nil
}
