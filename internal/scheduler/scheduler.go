// Package scheduler drives a bounded parallel worker pool over a
// ContentPlan's items, consulting the Scan Cache and running the matcher
// and heuristics on a cache miss.
package scheduler

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/cache"
	"github.com/skillscan/skillscan/internal/heuristics"
	"github.com/skillscan/skillscan/internal/match"
	"github.com/skillscan/skillscan/internal/metrics"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

// Workers returns the default worker count, bounded to
// min(32, max(4, floor(cores/2))).
func Workers() int {
	n := runtime.NumCPU() / 2
	if n < 4 {
		n = 4
	}
	if n > 32 {
		n = 32
	}
	return n
}

// Event is a typed progress notification pushed to the orchestrator's
// progress sink.
type Event struct {
	Kind        string // "file_complete" | "finding_batch"
	VirtualPath string
	Findings    []model.Finding
}

// Options configures one Scheduler run.
type Options struct {
	Workers         int
	Cache           *cache.Manager // nil disables caching
	RuleVersion     string
	UseBehavioral   bool
	RegexInvocation *atomic.Int64 // optional instrumentation counter for regex invocation counts
}

// Scheduler runs one ContentPlan (a target's ContentItems) through the
// matcher and heuristics under a bounded worker pool.
type Scheduler struct {
	opts   Options
	logger *zap.Logger
}

// New builds a Scheduler; a zero or negative Options.Workers falls back to
// the default bound.
func New(opts Options, logger *zap.Logger) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = Workers()
	}
	return &Scheduler{opts: opts, logger: logger}
}

// Run scans items against engine, emitting one Event per item via sink (may
// be nil). It returns the scanned-file count and the concatenated findings;
// ordering across items is not guaranteed, but findings within one item are
// ordered as match/heuristics produced them.
//
// Cancellation: once ctx is done, no new items are dispatched; in-flight
// items finish and their findings are still collected.
func (s *Scheduler) Run(ctx context.Context, items []model.ContentItem, engine *rules.Engine, sink func(Event)) (scannedFiles int, findings []model.Finding) {
	var (
		nextIndex int64
		mu        sync.Mutex
		wg        sync.WaitGroup
		scanned   int64
	)

	results := make([][]model.Finding, len(items))

	worker := func() {
		defer wg.Done()
		for {
			if ctx.Err() != nil {
				return
			}
			idx := atomic.AddInt64(&nextIndex, 1) - 1
			if idx >= int64(len(items)) {
				return
			}
			item := items[idx]
			itemFindings := s.scanOne(item, engine)
			results[idx] = itemFindings
			atomic.AddInt64(&scanned, 1)

			if sink != nil {
				mu.Lock()
				sink(Event{Kind: "file_complete", VirtualPath: item.VirtualPath})
				if len(itemFindings) > 0 {
					sink(Event{Kind: "finding_batch", VirtualPath: item.VirtualPath, Findings: itemFindings})
				}
				mu.Unlock()
			}
		}
	}

	workers := s.opts.Workers
	if workers > len(items) {
		workers = len(items)
	}
	if workers < 1 {
		workers = 1
	}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}
	wg.Wait()

	for _, r := range results {
		findings = append(findings, r...)
	}
	return int(scanned), findings
}

// scanOne consults the cache, falling back to matcher+heuristics on a miss.
// Unreadable/unscannable items never produce an error here; upstream
// content adapters already reduced "unreadable" to "absent from items".
func (s *Scheduler) scanOne(item model.ContentItem, engine *rules.Engine) []model.Finding {
	if s.opts.Cache != nil {
		if cached, ok := s.opts.Cache.Lookup(item.VirtualPath, item.Content, s.opts.RuleVersion); ok {
			metrics.CacheHit()
			return cached
		}
		metrics.CacheMiss()
	}

	if s.opts.RegexInvocation != nil {
		s.opts.RegexInvocation.Add(1)
	}

	findings := match.Match(item, engine)
	if s.opts.UseBehavioral {
		findings = append(findings, heuristics.Run(item)...)
	}
	match.SortStable(findings)

	if s.opts.Cache != nil {
		if err := s.opts.Cache.Store(item.VirtualPath, item.Content, s.opts.RuleVersion, findings); err != nil {
			s.logger.Warn("scheduler: cache store failed", zap.String("virtual_path", item.VirtualPath), zap.Error(err))
		}
	}

	metrics.FileScanned()
	for _, f := range findings {
		metrics.FindingEmitted(string(f.Severity))
	}

	return findings
}
