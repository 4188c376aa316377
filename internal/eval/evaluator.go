package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/bugbench/internal/cache"
	"github.com/dshills/bugbench/internal/dataset"
	"github.com/dshills/bugbench/internal/providers"
	"github.com/dshills/bugbench/internal/redact"
	"github.com/dshills/bugbench/internal/review"
)

// ErrConfiguration is returned when a run cannot start: unknown provider,
// missing credentials or an unusable dataset.
var ErrConfiguration = errors.New("configuration error")

// ResponseCache stores raw model replies by key.
type ResponseCache interface {
	Get(key string) (string, bool)
	Put(key, response string) error
}

// Options configures an evaluation run.
type Options struct {
	// Model is "provider:model" or a bare model name.
	Model string
	// MaxFiles caps the number of units evaluated; 0 means all.
	MaxFiles    int
	Concurrency int
	// RedactSecrets scrubs credentials from file content and diffs before
	// they are sent. RedactPaths blanks whole files by glob.
	RedactSecrets bool
	RedactPaths   []string
	Cache         ResponseCache
	// Env defaults to a lookup that returns "" for everything.
	Env    func(string) string
	Logger *slog.Logger
	// OnProgress is called after each unit completes.
	OnProgress func(done, total int)
}

// Evaluator runs one model over a dataset.
type Evaluator struct {
	ds       *dataset.Dataset
	backend  providers.Backend
	provider string
	model    string
	opts     Options
	logger   *slog.Logger
}

// New resolves the model spec against reg and checks the backend's
// credentials. No backend call is made.
func New(ds *dataset.Dataset, reg providers.Registry, opts Options) (*Evaluator, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: no dataset", ErrConfiguration)
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("%w: no model specified", ErrConfiguration)
	}
	provider, model := providers.ParseModelSpec(opts.Model)
	if model == "" {
		return nil, fmt.Errorf("%w: invalid model spec %q", ErrConfiguration, opts.Model)
	}
	backend, ok := reg.Get(provider)
	if !ok {
		return nil, fmt.Errorf("%w: provider %q not supported (available: %s)",
			ErrConfiguration, provider, strings.Join(reg.Names(), ", "))
	}

	env := opts.Env
	if env == nil {
		env = func(string) string { return "" }
	}
	if missing := providers.MissingCredentials(backend, env); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing environment variables for %s: %s",
			ErrConfiguration, provider, strings.Join(missing, ", "))
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Evaluator{
		ds:       ds,
		backend:  backend,
		provider: provider,
		model:    model,
		opts:     opts,
		logger:   logger,
	}, nil
}

// Model returns the model spec as given.
func (e *Evaluator) Model() string { return e.opts.Model }

type unit struct {
	bugID string
	file  dataset.File
}

func (e *Evaluator) units() []unit {
	var out []unit
	for _, b := range e.ds.Bugs {
		for _, f := range b.Files {
			if e.opts.MaxFiles > 0 && len(out) >= e.opts.MaxFiles {
				return out
			}
			out = append(out, unit{bugID: b.BugID, file: f})
		}
	}
	return out
}

// Run evaluates every unit in dataset order. A failing unit is recorded in
// its Result; only cancellation of ctx aborts the run.
func (e *Evaluator) Run(ctx context.Context) ([]Result, error) {
	units := e.units()
	results := make([]Result, len(units))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.evaluateUnit(gctx, u)
			n := done.Add(1)
			if e.opts.OnProgress != nil {
				e.opts.OnProgress(int(n), len(units))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Evaluator) evaluateUnit(ctx context.Context, u unit) Result {
	f := u.file
	res := Result{
		BugID:    u.bugID,
		FilePath: f.FilePath,
		Model:    e.opts.Model,
	}
	if f.GroundTruth != nil {
		res.GroundTruth = *f.GroundTruth.Clone()
	}
	log := e.logger.With("bug", u.bugID, "file", f.FilePath)

	gtLabel, ok := f.GroundTruth.FirstLabel()
	if !ok {
		log.Warn("no ground truth")
		res.GroundTruthLabel = LabelNone
		res.Error = ErrMsgNoGroundTruth
		return res
	}
	res.GroundTruthLabel = gtLabel

	content, diffText := f.FileContent, f.DiffContent
	if e.opts.RedactSecrets {
		if n := redact.Count(content) + redact.Count(diffText); n > 0 {
			log.Debug("redacted secrets", "count", n)
		}
		content = redact.Content(content, f.FilePath, e.opts.RedactPaths)
		diffText = redact.Content(diffText, f.FilePath, e.opts.RedactPaths)
	}
	prompt := review.BuildPrompt(content, diffText)
	res.Prediction.InputPrompt = prompt

	raw, err := e.call(ctx, prompt)
	if err != nil {
		log.Error("model call failed", "provider", e.provider, "error", err)
		res.Error = ErrMsgLLMFailed
		return res
	}
	res.Prediction.RawResponse = raw

	parsed, candidate, err := review.ParseResponse(raw)
	if err != nil {
		log.Warn("unparseable response", "error", err, "candidate", truncate(candidate, 200))
		res.Error = ErrMsgParseFailed
		return res
	}
	res.Prediction.Parsed = parsed

	s := ScoreUnit(gtLabel, parsed)
	res.PredictedLabel = s.PredictedLabel
	res.DetectedBug = s.Detected
	res.CorrectLabel = s.Correct
	res.HasSuggestions = s.HasSuggestions

	pred := "<none>"
	if s.PredictedLabel != nil {
		pred = string(*s.PredictedLabel)
		if !s.PredictedLabel.Valid() {
			log.Debug("non-canonical predicted label", "label", pred)
		}
	}
	log.Debug("scored", "gt", gtLabel, "pred", pred, "correct", s.Correct)
	return res
}

// call makes exactly one backend request, consulting the cache first.
func (e *Evaluator) call(ctx context.Context, prompt string) (string, error) {
	var key string
	if e.opts.Cache != nil {
		key = cache.BuildCacheKey(e.provider, e.model, prompt)
		if hit, ok := e.opts.Cache.Get(key); ok {
			return hit, nil
		}
	}

	raw, err := e.backend.Call(ctx, prompt, e.model)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("empty response")
	}

	if e.opts.Cache != nil {
		if err := e.opts.Cache.Put(key, raw); err != nil {
			e.logger.Warn("cache write failed", "error", err)
		}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
