package dedup

import (
	"context"
	"fmt"
	"time"

	"dupescan/logger"
	"dupescan/models"
	"dupescan/scanner"
)

// progressInterval is the longest gap between two progress log lines while a
// batch is running.
const progressInterval = 30 * time.Second

// Storage is the persistence surface the pipeline needs. The full backend
// contract lives in the storage package; this narrow interface keeps the core
// free of a dependency on it.
type Storage interface {
	LoadExistingCache() (map[models.CacheKey]models.FileRecord, error)
	SaveFiles(records []models.FileRecord) error
	SaveDuplicates(groups map[string][]models.FileRecord) error
}

// Pipeline runs one full scan: walk, hash (cache-aware, parallel), group,
// persist. Storage is written exactly once, after the whole batch completes.
type Pipeline struct {
	store   Storage
	workers int
}

// NewPipeline returns a pipeline bound to store. workers <= 0 selects the
// default pool size.
func NewPipeline(store Storage, workers int) *Pipeline {
	return &Pipeline{store: store, workers: workers}
}

// Run scans the given roots and persists the resulting file set and duplicate
// groups. Cancelling ctx aborts the scan without touching storage. The
// returned records are the full collected file set.
func (p *Pipeline) Run(ctx context.Context, roots []string) ([]models.FileRecord, error) {
	start := time.Now()

	cache, err := p.store.LoadExistingCache()
	if err != nil {
		logger.Get().Warn().Err(err).Msg("could not load existing cache, all files will be hashed")
		cache = map[models.CacheKey]models.FileRecord{}
	}
	logger.Get().Info().Int("records", len(cache)).Msg("loaded existing file records")

	files := scanner.CollectFiles(roots)
	total := len(files)
	logger.Get().Info().Int("files", total).Int("roots", len(roots)).Msg("collected candidate files")
	if total == 0 {
		logger.Get().Warn().Msg("no files found to process")
		return nil, nil
	}

	pool := NewHashPool(p.workers, cache)
	if err := pool.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer pool.Release()

	go func() {
		defer pool.Done()
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case pool.tasks <- path:
			}
		}
	}()

	records := p.collect(pool, total, start)

	if err := ctx.Err(); err != nil {
		// Aborted: nothing has been committed, prior state stays intact.
		return nil, err
	}

	if err := p.store.SaveFiles(records); err != nil {
		return nil, fmt.Errorf("failed to save file records: %w", err)
	}

	duplicates := FindDuplicates(records)
	logger.Get().Info().Int("groups", len(duplicates)).Msg("found duplicate groups")
	if err := p.store.SaveDuplicates(duplicates); err != nil {
		return nil, fmt.Errorf("failed to save duplicate groups: %w", err)
	}

	logger.Get().Info().
		Int("files", len(records)).
		Int("groups", len(duplicates)).
		Dur("elapsed", time.Since(start)).
		Msg("scan completed")

	return records, nil
}

// collect drains the pool, keeping per-batch counters and emitting periodic
// progress observations.
func (p *Pipeline) collect(pool *HashPool, total int, start time.Time) []models.FileRecord {
	logEvery := total / 50
	if logEvery < 1 {
		logEvery = 1
	}

	var records []models.FileRecord
	processed, successful, skipped := 0, 0, 0
	lastLog := start

	for result := range pool.Results() {
		processed++
		if result.Record != nil {
			records = append(records, *result.Record)
			successful++
			if result.FromCache {
				skipped++
			}
		}

		if processed%logEvery == 0 || time.Since(lastLog) >= progressInterval || processed == total {
			elapsed := time.Since(start).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(processed) / elapsed
			}
			logger.Get().Info().
				Int("processed", processed).
				Int("total", total).
				Int("successful", successful).
				Int("cached", skipped).
				Float64("files_per_sec", rate).
				Msg("progress")
			lastLog = time.Now()
		}
	}

	return records
}
