package match

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cdsmatch/internal/model"
)

// BatchMatcher is the per-batch matching contract the scheduler drives.
type BatchMatcher interface {
	MatchBatch(ctx context.Context, fields []model.InputField, candidates []model.CandidateField) ([]model.MatchResult, error)
}

// BatchScheduler splits the unmatched fields into fixed-size chunks and
// drives them through the matcher with bounded concurrency. A chunk failure
// degrades to empty placeholder results so every row still gets an entry.
type BatchScheduler struct {
	matcher   BatchMatcher
	batchSize int
	workers   int
	log       *zap.SugaredLogger
}

// NewBatchScheduler creates a scheduler. batchSize and workers must be > 0.
func NewBatchScheduler(matcher BatchMatcher, batchSize, workers int, log *zap.SugaredLogger) *BatchScheduler {
	if batchSize < 1 {
		batchSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &BatchScheduler{matcher: matcher, batchSize: batchSize, workers: workers, log: log}
}

// Run processes every chunk and concatenates the outputs in chunk order.
// The caller still sorts by row position at the merge boundary; chunks may
// complete in any order but each lands in its own result slot.
func (s *BatchScheduler) Run(ctx context.Context, unmatched []model.InputField, candidates []model.CandidateField) []model.MatchedRow {
	if len(unmatched) == 0 {
		return nil
	}

	chunks := chunkFields(unmatched, s.batchSize)
	s.log.Infow("processing batches", "fields", len(unmatched), "batches", len(chunks), "workers", s.workers)

	perChunk := make([][]model.MatchResult, len(chunks))
	var eg errgroup.Group
	eg.SetLimit(s.workers)
	for i, chunk := range chunks {
		eg.Go(func() error {
			results, err := s.matcher.MatchBatch(ctx, chunk, candidates)
			if err != nil {
				// Siblings keep going; this chunk degrades to empty rows.
				s.log.Errorw("batch failed, substituting empty results",
					"batch", i, "rows", len(chunk), "error", err)
				results = make([]model.MatchResult, len(chunk))
			}
			perChunk[i] = results
			return nil
		})
	}
	eg.Wait()

	out := make([]model.MatchedRow, 0, len(unmatched))
	for i, chunk := range chunks {
		for j, field := range chunk {
			result := model.MatchResult{}
			if j < len(perChunk[i]) {
				result = perChunk[i][j]
			}
			out = append(out, model.MatchedRow{Field: field, Result: result})
		}
	}
	return out
}

// chunkFields splits fields into contiguous chunks of at most size entries,
// preserving order.
func chunkFields(fields []model.InputField, size int) [][]model.InputField {
	var chunks [][]model.InputField
	for start := 0; start < len(fields); start += size {
		end := start + size
		if end > len(fields) {
			end = len(fields)
		}
		chunks = append(chunks, fields[start:end])
	}
	return chunks
}
