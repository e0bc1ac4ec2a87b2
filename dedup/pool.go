package dedup

import (
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"dupescan/models"
	"dupescan/scanner"
)

// taskBuffer bounds the in-flight task and result channels.
const taskBuffer = 256

// DefaultWorkers returns the worker count used when no override is given.
func DefaultWorkers() int {
	workers := runtime.NumCPU() + 4
	if workers > 32 {
		workers = 32
	}
	return workers
}

// Result is the outcome of processing one candidate file. Record is nil for
// soft failures (stat or hash errors); FromCache marks a digest reused from
// the previous scan.
type Result struct {
	Record    *models.FileRecord
	FromCache bool
}

// HashPool fans ProcessFile out across a fixed-size worker pool. The cache is
// shared read-only between workers and never mutated mid-scan.
type HashPool struct {
	workers int
	cache   map[models.CacheKey]models.FileRecord
	tasks   chan string
	results chan Result
	wg      sync.WaitGroup
	pool    *ants.Pool
}

func NewHashPool(workers int, cache map[models.CacheKey]models.FileRecord) *HashPool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &HashPool{
		workers: workers,
		cache:   cache,
		tasks:   make(chan string, taskBuffer),
		results: make(chan Result, taskBuffer),
	}
}

// Start launches the workers. The results channel is closed once every
// worker has drained the task channel.
func (p *HashPool) Start() error {
	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return err
	}
	p.pool = pool

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		if err := p.pool.Submit(p.worker); err != nil {
			p.wg.Done()
			return err
		}
	}

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	return nil
}

func (p *HashPool) worker() {
	defer p.wg.Done()
	for path := range p.tasks {
		record, fromCache := scanner.ProcessFile(path, p.cache)
		p.results <- Result{Record: record, FromCache: fromCache}
	}
}

// Submit queues one candidate path. Blocks when the buffer is full.
func (p *HashPool) Submit(path string) {
	p.tasks <- path
}

// Done signals that no further tasks will be submitted.
func (p *HashPool) Done() {
	close(p.tasks)
}

// Results returns the channel of per-file outcomes.
func (p *HashPool) Results() <-chan Result {
	return p.results
}

// Release frees the underlying goroutine pool.
func (p *HashPool) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
