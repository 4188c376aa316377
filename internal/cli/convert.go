package cli

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/bugbench/internal/bugsjs"
	"github.com/dshills/bugbench/internal/config"
	"github.com/dshills/bugbench/internal/dataset"
)

type convertFlags struct {
	bugsjsPath  string
	projects    string
	maxBugs     int
	output      string
	concurrency int
	noSpinner   bool
}

func (f *convertFlags) overrides() map[string]string {
	m := make(map[string]string)
	setString(m, "bugsjsPath", f.bugsjsPath)
	setString(m, "projects", f.projects)
	setInt(m, "maxBugs", f.maxBugs)
	setString(m, "datasetDir", f.output)
	setInt(m, "concurrency", f.concurrency)
	return m
}

func newConvertCmd(e *env) *cobra.Command {
	f := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert BugsJS bugs into a review dataset",
		Long: "Checks out the buggy and fixed revision of every selected bug, diffs them and writes " +
			"three dataset files: full, input-only and ground-truth-only.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fail(runConvert(cmd, e, f))
		},
	}
	cmd.Flags().StringVar(&f.bugsjsPath, "bugsjs-path", "", "BugsJS framework root (holds Projects/ and main.py)")
	cmd.Flags().StringVar(&f.projects, "projects", "", "Projects to convert (comma-separated, default all)")
	cmd.Flags().IntVar(&f.maxBugs, "max-bugs", 0, "Maximum bugs per project")
	cmd.Flags().StringVar(&f.output, "output", "", "Output directory (default: datasets)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Bugs converted in parallel per project")
	cmd.Flags().BoolVar(&f.noSpinner, "no-spinner", false, "Disable the progress spinner")
	return cmd
}

func runConvert(cmd *cobra.Command, e *env, f *convertFlags) error {
	cfg, err := config.Load(f.overrides())
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if cfg.BugsJSPath == "" {
		return fmt.Errorf("%w: --bugsjs-path is required", bugsjs.ErrConfiguration)
	}

	logger := e.logger()
	var done atomic.Int64
	spin := newProgress(e, !f.noSpinner, "Converting bugs...")
	conv, err := bugsjs.NewConverter(bugsjs.Options{
		Root:            cfg.BugsJSPath,
		Projects:        cfg.Projects,
		MaxBugs:         cfg.MaxBugs,
		Extensions:      cfg.Extensions,
		Language:        cfg.Language,
		Concurrency:     cfg.Concurrency,
		CheckoutTimeout: time.Duration(cfg.CheckoutTimeoutSeconds) * time.Second,
		Checkout:        e.checkout,
		Logger:          logger,
		OnBug: func(bugID string, converted bool) {
			n := done.Add(1)
			spin.update(fmt.Sprintf("Converting bugs... %d attempted (last: %s)", n, bugID))
		},
	})
	if err != nil {
		spin.stop()
		return err
	}

	ds, err := conv.Run(cmd.Context())
	spin.stop()
	if err != nil {
		return err
	}

	paths, err := dataset.WriteViews(cfg.DatasetDir, dataset.NewViews(ds))
	if err != nil {
		return err
	}

	out := e.stdout
	fmt.Fprintf(out, "Converted %d bugs (%d files)\n", ds.Metadata.TotalBugs, ds.FileCount())
	projects := make([]string, 0, len(ds.Metadata.ConversionStats))
	for p := range ds.Metadata.ConversionStats {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	for _, p := range projects {
		fmt.Fprintf(out, "  %-12s %d\n", p, ds.Metadata.ConversionStats[p])
	}
	fmt.Fprintf(out, "Full dataset:       %s\n", paths.Full)
	fmt.Fprintf(out, "Input only:         %s\n", paths.InputOnly)
	fmt.Fprintf(out, "Ground truth only:  %s\n", paths.GroundTruthOnly)
	return nil
}
