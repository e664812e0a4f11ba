// Package pipeline orchestrates one run: file discovery, per-file matching,
// verification and output writing, with bounded parallelism across files.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/config"
	"cdsmatch/internal/llm"
	"cdsmatch/internal/logging"
	"cdsmatch/internal/match"
	"cdsmatch/internal/model"
	"cdsmatch/internal/sheet"
	"cdsmatch/internal/usage"
	"cdsmatch/internal/verify"
)

// Pipeline wires the matching engine to its collaborators. Files share only
// read-only configuration and the usage tracker carried in the context.
type Pipeline struct {
	cfg       *config.Config
	custom    *match.CustomFieldMatcher
	selector  *match.ViewSelector
	context   *match.ContextBuilder
	scheduler *match.BatchScheduler
	verifier  *verify.Verifier
}

// New builds the pipeline around a catalog store and a model client.
func New(cfg *config.Config, store *catalog.Store, client llm.Client) *Pipeline {
	log := logging.L()
	matcher := match.NewFieldMatcher(client, log)
	return &Pipeline{
		cfg:       cfg,
		custom:    match.NewCustomFieldMatcher(store, cfg.Match.CustomFieldThreshold, log),
		selector:  match.NewViewSelector(store, store, client, log),
		context:   match.NewContextBuilder(store, log),
		scheduler: match.NewBatchScheduler(matcher, cfg.Match.BatchSize, cfg.Match.MaxConcurrentBatches, log),
		verifier:  verify.New(cfg.Verify, log),
	}
}

// Run processes the given workbooks with at most MaxConcurrentFiles in
// flight. A file's failure is logged and counted, never fatal to siblings.
func (p *Pipeline) Run(ctx context.Context, files []string) (processed, failed int) {
	if len(files) == 0 {
		return 0, 0
	}

	results := make([]error, len(files))
	var eg errgroup.Group
	eg.SetLimit(p.cfg.Match.MaxConcurrentFiles)
	for i, file := range files {
		eg.Go(func() error {
			results[i] = p.ProcessFile(ctx, file)
			return nil
		})
	}
	eg.Wait()

	for i, err := range results {
		if err != nil {
			logging.ForFile(filepath.Base(files[i])).Errorw("file failed", "error", err)
			failed++
		} else {
			processed++
		}
	}
	return processed, failed
}

// ProcessFile runs the full matching flow for one workbook and archives the
// source on success.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) error {
	base := filepath.Base(path)
	log := logging.ForFile(base)
	ctx = usage.WithFile(ctx, base)
	start := time.Now()

	wb, err := sheet.Open(path, p.cfg.Sheet, log)
	if err != nil {
		return err
	}
	defer wb.Close()

	fields, err := wb.Fields()
	if err != nil {
		return err
	}

	rows, err := p.matchFields(ctx, fields, log)
	if err != nil {
		return err
	}
	rows = p.verifier.Apply(rows)

	if err := wb.WriteResults(rows); err != nil {
		return err
	}
	outPath := sheet.OutputPath(p.cfg.DataDir, path, time.Now())
	if err := wb.SaveAs(outPath); err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	log.Infow("processed file saved", "output", filepath.Base(outPath))

	if _, err := sheet.Archive(p.cfg.DataDir, path, time.Now()); err != nil {
		log.Warnw("could not archive source file, processing completed anyway", "error", err)
	} else {
		log.Infow("source file archived")
	}

	if t := usage.FromContext(ctx); t != nil {
		counts := t.FileTotal(base)
		log.Infow("file done", "duration", time.Since(start).Round(time.Millisecond),
			"llm_calls", counts.Calls, "tokens", counts.TotalTokens)
	} else {
		log.Infow("file done", "duration", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// matchFields runs the two matching stages and the order-restoring merge.
func (p *Pipeline) matchFields(ctx context.Context, fields []model.InputField, log *zap.SugaredLogger) ([]model.MatchedRow, error) {
	matched, unmatched, err := p.custom.Match(ctx, fields)
	if err != nil {
		return nil, err
	}
	log.Infow("custom field matching done", "matched", len(matched), "unmatched", len(unmatched))

	if len(unmatched) == 0 {
		log.Infow("all fields matched from custom table, skipping catalog stage")
		return match.Merge(matched, nil), nil
	}

	selected, err := p.selector.Select(ctx, unmatched)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		// No catalog coverage: the remaining rows get empty results.
		log.Infow("no catalog views selected, leaving remaining fields unmatched")
		empty := make([]model.MatchedRow, len(unmatched))
		for i, f := range unmatched {
			empty[i] = model.MatchedRow{Field: f}
		}
		return match.Merge(matched, empty), nil
	}

	candidates, err := p.context.Build(ctx, selected)
	if err != nil {
		return nil, err
	}
	log.Infow("context built", "views", len(selected), "candidate_fields", len(candidates))

	batchRows := p.scheduler.Run(ctx, unmatched, candidates)
	return match.Merge(matched, batchRows), nil
}
