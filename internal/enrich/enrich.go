// Package enrich implements the bounded-concurrency enrichment pipeline. For a
// batch of complaint records it fetches per-record safety-issue detail through
// a fixed-size worker pool, merges the detail back additively, and tolerates
// individual fetch failures without aborting the batch.
package enrich

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mkoval/defectwatch/internal/observability"
	"github.com/mkoval/defectwatch/internal/types"
)

// DetailFetcher fetches the enrichment detail for one complaint. A nil
// enrichment with a nil error means the upstream had no detail for the record.
type DetailFetcher interface {
	ComplaintDetail(ctx context.Context, odiNumber int64) (*types.ComplaintEnrichment, error)
}

// DetailFetcherFunc adapts a function to the DetailFetcher interface.
type DetailFetcherFunc func(ctx context.Context, odiNumber int64) (*types.ComplaintEnrichment, error)

// ComplaintDetail calls f.
func (f DetailFetcherFunc) ComplaintDetail(ctx context.Context, odiNumber int64) (*types.ComplaintEnrichment, error) {
	return f(ctx, odiNumber)
}

const (
	// DefaultMaxRecords bounds how many records a single batch will enrich.
	DefaultMaxRecords = 150
	// DefaultConcurrency bounds concurrent in-flight detail fetches.
	DefaultConcurrency = 6
)

// Options configures a batch.
type Options struct {
	MaxRecords  int // records beyond this cap pass through unenriched
	Concurrency int // maximum concurrent in-flight fetches
}

func (o Options) withDefaults() Options {
	if o.MaxRecords <= 0 {
		o.MaxRecords = DefaultMaxRecords
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Failure records a single complaint whose enrichment fetch failed. Failures
// are reported as data, never raised.
type Failure struct {
	ODINumber int64  `json:"odiNumber"`
	Err       string `json:"error"`
}

// Stats summarizes a batch for "N of M enriched" reporting.
type Stats struct {
	Requested int `json:"requested"`
	Enriched  int `json:"enriched"`
	Failed    int `json:"failed"`
}

// Result is the outcome of one enrichment batch.
type Result struct {
	Records  []types.ComplaintRecord
	Failures []Failure
	Stats    Stats
}

// Pipeline runs enrichment batches against a detail fetcher.
type Pipeline struct {
	fetcher DetailFetcher
	log     *zap.Logger
}

// New creates a pipeline. A nil logger is replaced with a no-op logger.
func New(fetcher DetailFetcher, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{fetcher: fetcher, log: log}
}

// Run enriches up to opts.MaxRecords records from the batch, fanning fetches
// out across at most opts.Concurrency workers. The returned records are in
// input order regardless of completion order, with per-record failures
// collected rather than propagated. Input records are not mutated; enriched
// copies are returned.
func (p *Pipeline) Run(ctx context.Context, records []types.ComplaintRecord, opts Options) (Result, error) {
	if p.fetcher == nil {
		return Result{}, fmt.Errorf("enrich: no detail fetcher configured")
	}
	opts = opts.withDefaults()

	out := make([]types.ComplaintRecord, len(records))
	copy(out, records)
	if len(records) == 0 {
		return Result{Records: out}, nil
	}

	limit := opts.MaxRecords
	if limit > len(records) {
		limit = len(records)
	}

	// Workers fill enrichments by input index; the slice is sized up front so
	// no reordering is needed after the join.
	enrichments := make([]*types.ComplaintEnrichment, limit)
	var mu sync.Mutex
	var failures []Failure

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := 0; i < limit; i++ {
		i := i
		odi := records[i].ODINumber
		g.Go(func() error {
			enr, err := p.fetcher.ComplaintDetail(gCtx, odi)
			if err != nil {
				observability.EnrichmentOutcomes.WithLabelValues("failed").Inc()
				p.log.Debug("enrichment fetch failed", zap.Int64("odi", odi), zap.Error(err))
				mu.Lock()
				failures = append(failures, Failure{ODINumber: odi, Err: err.Error()})
				mu.Unlock()
				return nil // per-record failures never abort siblings
			}
			if enr == nil {
				observability.EnrichmentOutcomes.WithLabelValues("failed").Inc()
				mu.Lock()
				failures = append(failures, Failure{ODINumber: odi, Err: "no enrichment detail available"})
				mu.Unlock()
				return nil
			}
			enrichments[i] = enr
			return nil
		})
	}
	// Workers only ever return nil; the join is a barrier before reassembly.
	_ = g.Wait()

	for skipped := len(records) - limit; skipped > 0; skipped-- {
		observability.EnrichmentOutcomes.WithLabelValues("skipped").Inc()
	}

	stats := Stats{Requested: limit, Failed: len(failures)}
	for i := 0; i < limit; i++ {
		if enrichments[i] == nil {
			continue
		}
		rec := records[i]
		rec.Enrichment = enrichments[i]
		out[i] = rec
		stats.Enriched++
		observability.EnrichmentOutcomes.WithLabelValues("enriched").Inc()
	}

	// Order failures by input position for deterministic output.
	sortFailures(failures, records[:limit])

	return Result{Records: out, Failures: failures, Stats: stats}, nil
}

func sortFailures(failures []Failure, requested []types.ComplaintRecord) {
	if len(failures) < 2 {
		return
	}
	pos := make(map[int64]int, len(requested))
	for i := range requested {
		pos[requested[i].ODINumber] = i
	}
	for i := 1; i < len(failures); i++ {
		for j := i; j > 0 && pos[failures[j].ODINumber] < pos[failures[j-1].ODINumber]; j-- {
			failures[j], failures[j-1] = failures[j-1], failures[j]
		}
	}
}
