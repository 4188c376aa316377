package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/bugbench/internal/cache"
	"github.com/dshills/bugbench/internal/config"
	"github.com/dshills/bugbench/internal/dataset"
	"github.com/dshills/bugbench/internal/eval"
	"github.com/dshills/bugbench/internal/output"
	"github.com/dshills/bugbench/internal/providers"
)

type evaluateFlags struct {
	dataset     string
	model       string
	maxFiles    int
	output      string
	format      string
	summaryOut  string
	concurrency int
	cache       bool
	redact      bool
	noSpinner   bool
}

func (f *evaluateFlags) overrides() map[string]string {
	m := make(map[string]string)
	setString(m, "model", f.model)
	setInt(m, "maxFiles", f.maxFiles)
	setString(m, "resultsDir", f.output)
	setString(m, "format", f.format)
	setInt(m, "concurrency", f.concurrency)
	if f.cache {
		m["cache.enabled"] = strconv.FormatBool(true)
	}
	if f.redact {
		m["privacy.redactSecrets"] = strconv.FormatBool(true)
	}
	return m
}

func newEvaluateCmd(e *env) *cobra.Command {
	f := &evaluateFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a model against a converted dataset",
		Long: "Sends every file of the dataset to the model, scores the first suggestion of each reply " +
			"against the ground truth and writes an evaluation report plus a detailed comparison.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fail(runEvaluate(cmd, e, f))
		},
	}
	cmd.Flags().StringVar(&f.dataset, "dataset", "", "Dataset file (default: <datasetDir>/"+dataset.FullFile+")")
	cmd.Flags().StringVar(&f.model, "model", "", `Model as "provider:model" or a bare model name`)
	cmd.Flags().IntVar(&f.maxFiles, "max-files", 0, "Maximum files to evaluate")
	cmd.Flags().StringVar(&f.output, "output", "", "Results directory (default: evaluation_results)")
	cmd.Flags().StringVar(&f.format, "format", "", "Summary format (text, json, markdown, yaml)")
	cmd.Flags().StringVar(&f.summaryOut, "summary-out", "", "Write the summary to this file instead of stdout")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Model calls in flight at once")
	cmd.Flags().BoolVar(&f.cache, "cache", false, "Reuse cached model replies")
	cmd.Flags().BoolVar(&f.redact, "redact", false, "Redact secrets from prompts before sending")
	cmd.Flags().BoolVar(&f.noSpinner, "no-spinner", false, "Disable the progress spinner")
	return cmd
}

func runEvaluate(cmd *cobra.Command, e *env, f *evaluateFlags) error {
	cfg, err := config.Load(f.overrides())
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger := e.logger()

	path := f.dataset
	if path == "" {
		path = filepath.Join(cfg.DatasetDir, dataset.FullFile)
	}
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}

	reg := providers.NewRegistry(e.getenv, providers.Options{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
	opts := eval.Options{
		Model:         cfg.Model,
		MaxFiles:      cfg.MaxFiles,
		Concurrency:   cfg.Concurrency,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		RedactPaths:   cfg.Privacy.RedactPaths,
		Env:           e.getenv,
		Logger:        logger,
	}
	if cfg.Cache.Enabled {
		c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		opts.Cache = c
	}

	spin := newProgress(e, !f.noSpinner, "Evaluating...")
	opts.OnProgress = func(done, total int) {
		spin.update(fmt.Sprintf("Evaluating... %d/%d files", done, total))
	}
	ev, err := eval.New(ds, reg, opts)
	if err != nil {
		spin.stop()
		return err
	}

	started := time.Now()
	results, err := ev.Run(cmd.Context())
	spin.stop()
	if err != nil {
		return err
	}

	metrics := eval.ComputeMetrics(results)
	report := eval.NewReport(results, metrics, eval.ReportMetadata{
		Model:          ev.Model(),
		Dataset:        path,
		EvaluationDate: started.Format(time.RFC3339),
	})
	cmp := eval.Compare(results)
	cmp.Metadata.AnalysisDate = report.Metadata.EvaluationDate

	reportPath := filepath.Join(cfg.ResultsDir, eval.ReportFilename(ev.Model(), started))
	if err := output.WriteJSONFile(reportPath, report); err != nil {
		return err
	}
	cmpPath := filepath.Join(cfg.ResultsDir, eval.ComparisonFilename(ev.Model(), started))
	if err := output.WriteJSONFile(cmpPath, cmp); err != nil {
		return err
	}

	if f.summaryOut != "" {
		if err := output.WriteReport(report, cfg.Format, f.summaryOut); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	} else {
		w, err := output.GetWriter(cfg.Format)
		if err != nil {
			return err
		}
		if tw, ok := w.(*output.TextWriter); ok {
			tw.Color = !color.NoColor
		}
		if err := w.Write(e.stdout, report); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	fmt.Fprintf(e.stderr, "Report:     %s\nComparison: %s\n", reportPath, cmpPath)
	logger.Info("evaluation finished", "model", ev.Model(), "files", len(results),
		"error_rate", metrics.ErrorRate, "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}
