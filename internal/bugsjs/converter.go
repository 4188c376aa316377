package bugsjs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/bugbench/internal/dataset"
	"github.com/dshills/bugbench/internal/diff"
	"github.com/dshills/bugbench/internal/groundtruth"
	"github.com/dshills/bugbench/internal/review"
)

var (
	// ErrConfiguration is returned when a conversion cannot start.
	ErrConfiguration = errors.New("configuration error")
	// ErrNothingConverted is returned when every selected bug was skipped.
	ErrNothingConverted = errors.New("no bugs were converted")
)

// Options configures a conversion run.
type Options struct {
	// Root is the BugsJS framework directory holding Projects/ and main.py.
	Root string
	// Projects to convert, in order. Empty means all known projects.
	Projects []string
	// MaxBugs caps bugs per project; 0 means all.
	MaxBugs    int
	Extensions []string
	// Language is the default language tag for ground truth.
	Language string
	// Concurrency is the number of bugs converted at once per project.
	Concurrency     int
	CheckoutTimeout time.Duration
	// TempDir is the parent of per-project work directories. Defaults to
	// os.TempDir.
	TempDir string
	// Checkout overrides the main.py driver.
	Checkout CheckoutFunc
	Logger   *slog.Logger
	// OnBug is called after each bug is attempted.
	OnBug func(bugID string, converted bool)
	Now   func() time.Time
}

// Converter turns BugsJS bugs into a dataset.
type Converter struct {
	opts     Options
	checkout CheckoutFunc
	logger   *slog.Logger
}

// NewConverter validates opts. Unknown project names and a root without
// Projects/ are configuration errors.
func NewConverter(opts Options) (*Converter, error) {
	if strings.TrimSpace(opts.Root) == "" {
		return nil, fmt.Errorf("%w: bugsjs path is required", ErrConfiguration)
	}
	if len(opts.Projects) == 0 {
		opts.Projects = append([]string(nil), Projects...)
	}
	var unknown []string
	for _, p := range opts.Projects {
		if !IsKnownProject(p) {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown projects %s (known: %s)",
			ErrConfiguration, strings.Join(unknown, ", "), strings.Join(Projects, ", "))
	}
	if opts.MaxBugs < 0 {
		return nil, fmt.Errorf("%w: max bugs must not be negative", ErrConfiguration)
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".js"}
	}
	if opts.Language == "" {
		opts.Language = groundtruth.DefaultLanguage
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if err := CheckRoot(opts.Root, opts.Checkout == nil); err != nil {
		return nil, err
	}

	checkout := opts.Checkout
	if checkout == nil {
		c := &Checkouter{Root: opts.Root, Timeout: opts.CheckoutTimeout, Extensions: opts.Extensions}
		checkout = c.Checkout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{opts: opts, checkout: checkout, logger: logger}, nil
}

// Run converts every selected project and assembles the dataset. A project
// that fails entirely is recorded with a count of 0.
func (c *Converter) Run(ctx context.Context) (*dataset.Dataset, error) {
	var records []dataset.BugRecord
	stats := make(map[string]int, len(c.opts.Projects))

	for _, project := range c.opts.Projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := c.ConvertProject(ctx, project)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("project failed", "project", project, "error", err)
			stats[project] = 0
			continue
		}
		stats[project] = len(recs)
		records = append(records, recs...)
	}

	if len(records) == 0 {
		return nil, ErrNothingConverted
	}
	ds := dataset.Assemble(records, c.groundTruth, dataset.AssembleOptions{
		Stats:    stats,
		Projects: append([]string(nil), c.opts.Projects...),
		Now:      c.opts.Now,
	})
	return ds, nil
}

// ConvertProject converts the bugs of one project. Skipped bugs are logged
// and left out; only an unreadable registry fails the project.
func (c *Converter) ConvertProject(ctx context.Context, project string) ([]dataset.BugRecord, error) {
	bugs, err := LoadRegistry(c.opts.Root, project)
	if err != nil {
		return nil, err
	}
	if c.opts.MaxBugs > 0 && len(bugs) > c.opts.MaxBugs {
		bugs = bugs[:c.opts.MaxBugs]
	}
	c.logger.Info("converting project", "project", project, "bugs", len(bugs))

	work, err := os.MkdirTemp(c.opts.TempDir, "bugsjs_"+project+"_")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(work)

	slots := make([]*dataset.BugRecord, len(bugs))
	var converted atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, bug := range bugs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := c.ConvertBug(gctx, project, bug, work)
			id := dataset.BugID(project, bug.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("bug skipped", "project", project, "bug", id, "error", err)
			} else {
				slots[i] = &rec
				converted.Add(1)
			}
			if c.opts.OnBug != nil {
				c.opts.OnBug(id, err == nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]dataset.BugRecord, 0, converted.Load())
	for _, r := range slots {
		if r != nil {
			records = append(records, *r)
		}
	}
	c.logger.Info("project converted", "project", project, "converted", len(records), "attempted", len(bugs))
	return records, nil
}

// ConvertBug checks out both versions of one bug under work and extracts
// its changed files. The checkouts are removed before returning.
func (c *Converter) ConvertBug(ctx context.Context, project string, bug Bug, work string) (dataset.BugRecord, error) {
	id := dataset.BugID(project, bug.ID)
	dirs := make(map[Version]string, 2)
	for _, v := range []Version{Buggy, Fixed} {
		dest := filepath.Join(work, fmt.Sprintf("%s_%s_%s", project, bug.ID, v))
		dirs[v] = dest
		defer os.RemoveAll(dest)

		c.logger.Debug("checkout", "project", project, "bug", id, "version", v)
		if err := c.checkout(ctx, project, bug.ID, v, dest); err != nil {
			return dataset.BugRecord{}, err
		}
	}

	changes, err := diff.Extract(dirs[Buggy], dirs[Fixed], diff.ExtractOptions{
		Extensions: c.opts.Extensions,
		Logger:     c.logger.With("project", project, "bug", id),
	})
	if err != nil {
		return dataset.BugRecord{}, err
	}
	return dataset.NewBugRecord(project, bug.ID, bug.Category, bug.Patterns, changes)
}

func (c *Converter) groundTruth(r dataset.BugRecord, f dataset.FileChange) review.GroundTruth {
	return groundtruth.Build(
		groundtruth.BugInfo{ID: r.BugID, Category: r.Category},
		diff.Change{
			Path:         f.Path,
			BuggyContent: f.BuggyContent,
			FixedContent: f.FixedContent,
			UnifiedDiff:  f.UnifiedDiff,
		},
		c.opts.Language,
	)
}
