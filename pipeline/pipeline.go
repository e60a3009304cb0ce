package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remiges-tech/amlsynth/export"
	"github.com/remiges-tech/amlsynth/metrics"
	"github.com/remiges-tech/amlsynth/objstore"
	"github.com/remiges-tech/amlsynth/sqlrun"
	"github.com/remiges-tech/amlsynth/store"
	"github.com/remiges-tech/amlsynth/synth"
	"github.com/remiges-tech/logharbour/logharbour"
)

// Stage names, as used in logs and metric labels.
const (
	StageGenerate = "generate"
	StageExport   = "export"
	StagePublish  = "publish"
	StageLoad     = "load"
	StageRunSQL   = "runsql"
)

// Database is the persistence a pipeline loads into. *store.Store
// satisfies it.
type Database interface {
	LoadDataset(ctx context.Context, ds *synth.Dataset) (store.LoadResult, error)
	ExecSQL(ctx context.Context, sql string) error
}

// Deps are the optional external systems of a pipeline. A nil Database
// skips loading and SQL; a nil ObjectStore skips publishing.
type Deps struct {
	Database    Database
	ObjectStore objstore.ObjectStore
}

// Result describes a completed run.
type Result struct {
	RunID     string
	Summary   synth.Summary
	OutputDir string
	Published []string
	Loaded    *store.LoadResult
	SQLFiles  []string
}

// Pipeline runs generate, export, publish, load and SQL stages.
type Pipeline struct {
	cfg      AppConfig
	deps     Deps
	logger   *logharbour.Logger
	metrics  metrics.Metrics
	exporter *export.Exporter
}

// New builds a pipeline. m must already carry the run metrics (see
// metrics.RegisterRunMetrics).
func New(cfg AppConfig, deps Deps, logger *logharbour.Logger, m metrics.Metrics) *Pipeline {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Pipeline{
		cfg:      cfg,
		deps:     deps,
		logger:   logger.WithModule("pipeline"),
		metrics:  m,
		exporter: export.NewExporter(logger),
	}
}

// stage runs fn, timing it and counting failures.
func (p *Pipeline) stage(name string, fn func() error) error {
	p.logger.Info().LogActivity("Stage started", map[string]any{"stage": name})
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.metrics.RecordWithLabels(metrics.StageDuration, elapsed.Seconds(), name)
	if err != nil {
		p.metrics.RecordWithLabels(metrics.StageFailures, 1, name)
		p.logger.Error(err).LogActivity("Stage failed", map[string]any{"stage": name})
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Info().LogActivity("Stage completed", map[string]any{
		"stage":      name,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	return nil
}

// Generate builds the dataset and records its table and label counts.
func (p *Pipeline) Generate() (*synth.Dataset, synth.Summary, error) {
	var ds *synth.Dataset
	err := p.stage(StageGenerate, func() error {
		var err error
		ds, err = synth.NewGenerator(p.cfg.Generator, p.logger).Generate()
		return err
	})
	if err != nil {
		return nil, synth.Summary{}, err
	}
	s := synth.Summarize(ds)
	p.recordSummary(s)
	return ds, s, nil
}

func (p *Pipeline) recordSummary(s synth.Summary) {
	p.metrics.RecordWithLabels(metrics.TableRows, float64(s.Customers), "customers")
	p.metrics.RecordWithLabels(metrics.TableRows, float64(s.Accounts), "accounts")
	p.metrics.RecordWithLabels(metrics.TableRows, float64(s.Merchants), "merchants")
	p.metrics.RecordWithLabels(metrics.TableRows, float64(s.Transactions), "transactions")
	p.metrics.RecordWithLabels(metrics.PatternRows, float64(s.Labels[synth.PatternNone]), "normal")
	for _, pat := range synth.Patterns {
		p.metrics.RecordWithLabels(metrics.PatternRows, float64(s.Labels[pat]), pat.String())
	}
}

// Export writes ds as CSV into the configured output directory.
func (p *Pipeline) Export(ds *synth.Dataset) error {
	return p.stage(StageExport, func() error {
		return p.exporter.Write(p.cfg.OutputDir, ds)
	})
}

// Publish uploads the exported files under the run's prefix. It is a no-op
// without an object store.
func (p *Pipeline) Publish(ctx context.Context, runID string) ([]string, error) {
	if p.deps.ObjectStore == nil {
		return nil, nil
	}
	var keys []string
	err := p.stage(StagePublish, func() error {
		pub := objstore.NewPublisher(p.deps.ObjectStore, p.cfg.ObjStore.Bucket, p.cfg.ObjStore.Prefix, p.logger)
		var err error
		keys, err = pub.Publish(ctx, runID, p.cfg.OutputDir, export.Files)
		return err
	})
	return keys, err
}

// Load replaces the database contents with ds.
func (p *Pipeline) Load(ctx context.Context, ds *synth.Dataset) (store.LoadResult, error) {
	var res store.LoadResult
	if p.deps.Database == nil {
		return res, fmt.Errorf("%s: no database configured", StageLoad)
	}
	err := p.stage(StageLoad, func() error {
		var err error
		res, err = p.deps.Database.LoadDataset(ctx, ds)
		return err
	})
	return res, err
}

// LoadFromDir loads the CSV export found in the output directory.
func (p *Pipeline) LoadFromDir(ctx context.Context) (store.LoadResult, error) {
	ds, err := p.exporter.Read(p.cfg.OutputDir)
	if err != nil {
		return store.LoadResult{}, fmt.Errorf("%s: %w", StageLoad, err)
	}
	return p.Load(ctx, ds)
}

// RunSQL executes the configured SQL files, or paths when given, in order.
func (p *Pipeline) RunSQL(ctx context.Context, paths ...string) ([]string, error) {
	if p.deps.Database == nil {
		return nil, fmt.Errorf("%s: no database configured", StageRunSQL)
	}
	runner := sqlrun.NewRunner(p.deps.Database, p.logger)
	var done []string
	err := p.stage(StageRunSQL, func() error {
		var err error
		if len(paths) > 0 {
			done, err = runner.Run(ctx, paths)
		} else {
			done, err = runner.RunPatterns(ctx, p.cfg.SQLDir, p.cfg.SQLPatterns)
		}
		return err
	})
	return done, err
}

// Run executes every stage whose dependencies are configured: generate and
// export always, publish with an object store, load and SQL with a
// database. The first failing stage ends the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), OutputDir: p.cfg.OutputDir}
	p.logger.Info().LogActivity("Run started", map[string]any{
		"run_id": res.RunID,
		"seed":   p.cfg.Generator.Seed,
	})

	ds, summary, err := p.Generate()
	if err != nil {
		return nil, err
	}
	res.Summary = summary
	if err := p.Export(ds); err != nil {
		return nil, err
	}
	if res.Published, err = p.Publish(ctx, res.RunID); err != nil {
		return nil, err
	}
	if p.deps.Database != nil {
		loaded, err := p.Load(ctx, ds)
		if err != nil {
			return nil, err
		}
		res.Loaded = &loaded
		if len(p.cfg.SQLPatterns) > 0 {
			if res.SQLFiles, err = p.RunSQL(ctx); err != nil {
				return nil, err
			}
		}
	}

	p.logger.Info().LogActivity("Run completed", map[string]any{
		"run_id":    res.RunID,
		"published": len(res.Published),
		"sql_files": len(res.SQLFiles),
	})
	return res, nil
}

type textfileWriter interface {
	WriteToTextfile(path string) error
}

// WriteMetrics exports the run metrics to the configured text file. It does
// nothing when no file is configured or the backend cannot export.
func (p *Pipeline) WriteMetrics() error {
	if p.cfg.MetricsFile == "" {
		return nil
	}
	w, ok := p.metrics.(textfileWriter)
	if !ok {
		return nil
	}
	if err := w.WriteToTextfile(p.cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics to %s: %w", p.cfg.MetricsFile, err)
	}
	return nil
}
