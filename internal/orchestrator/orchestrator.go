// Package orchestrator drives the top-level scan: targets → plans →
// schedule → findings → filtered result. It is the engine's single point
// of contact with the CLI and the Result Store.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/cache"
	"github.com/skillscan/skillscan/internal/meta"
	"github.com/skillscan/skillscan/internal/metrics"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
	"github.com/skillscan/skillscan/internal/scheduler"
	"github.com/skillscan/skillscan/internal/target"
)

var tracer = otel.Tracer("github.com/skillscan/skillscan/internal/orchestrator")

// EventKind enumerates the typed progress events emitted over the course
// of one Scan call.
type EventKind string

const (
	EventStart          EventKind = "start"
	EventBeginTarget    EventKind = "begin_target"
	EventCompleteTarget EventKind = "complete_target"
	EventFinish         EventKind = "finish"
	EventFileComplete   EventKind = "file_complete"
	EventFindingBatch   EventKind = "finding_batch"
)

// Event is the single typed message the progress sink receives; it holds
// no reference into orchestrator-internal state.
type Event struct {
	Kind        EventKind
	TargetName  string
	TotalItems  int
	VirtualPath string
	Findings    []model.Finding
}

// Sink receives progress events. It must be safe to call repeatedly and
// serially; the orchestrator never calls it concurrently.
type Sink func(Event)

// Options configures one Scan call.
type Options struct {
	Cache             *cache.Manager // nil disables caching
	UseBehavioral     bool           // run heuristic analyzers in addition to signature matching
	ScoreConfidence   bool           // apply confidence scoring to every finding
	MinConfidence     float64        // applied only when ScoreConfidence is true
	SeverityFloor     rules.Severity // exit-code threshold; zero value disables the floor
	Fix               bool           // apply narrow comment-out fix mode
	SchedulerOptions  scheduler.Options
	TargetOptions     target.Options
	LineTextOf        func(file string, line int) string // backs confidence scoring's comment detection
}

// Orchestrator runs Scan over a compiled rule corpus.
type Orchestrator struct {
	engine      *rules.Engine
	ruleVersion string
	logger      *zap.Logger
}

// New builds an Orchestrator around an already-compiled rule engine.
func New(engine *rules.Engine, ruleVersion string, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{engine: engine, ruleVersion: ruleVersion, logger: logger}
}

// Scan drives targets through content planning, scheduling, and
// meta-filtering, returning one immutable ScanResult. It never aborts a
// scan because of a per-target error; the only terminal error is "no
// targets".
func (o *Orchestrator) Scan(ctx context.Context, targets []model.Target, opts Options, sink Sink) (model.ScanResult, error) {
	if len(targets) == 0 {
		return model.ScanResult{}, fmt.Errorf("orchestrator: no targets provided")
	}

	ctx, span := tracer.Start(ctx, "orchestrator.Scan")
	defer span.End()

	start := time.Now()
	emit(sink, Event{Kind: EventStart, TotalItems: len(targets)})

	opts.SchedulerOptions.RuleVersion = o.ruleVersion
	opts.SchedulerOptions.Cache = opts.Cache
	opts.SchedulerOptions.UseBehavioral = opts.UseBehavioral

	sched := scheduler.New(opts.SchedulerOptions, o.logger)

	var allFindings []model.Finding
	var scannedFiles int

	for _, t := range targets {
		emit(sink, Event{Kind: EventBeginTarget, TargetName: t.Name})

		plan, planFindings, scanned := o.scanOneTarget(ctx, t, opts, sched, sink)
		allFindings = append(allFindings, planFindings...)
		scannedFiles += scanned

		emit(sink, Event{Kind: EventCompleteTarget, TargetName: t.Name, TotalItems: len(plan.Items)})
	}

	allFindings = meta.Dedupe(allFindings)
	if opts.ScoreConfidence {
		lineTextOf := opts.LineTextOf
		if lineTextOf == nil {
			lineTextOf = func(string, int) string { return "" }
		}
		meta.ApplyConfidence(allFindings, lineTextOf)
		allFindings = meta.FilterByThreshold(allFindings, opts.MinConfidence)
	}

	if opts.Fix {
		if err := ApplyFixes(allFindings); err != nil {
			o.logger.Warn("orchestrator: fix mode failed", zap.Error(err))
		}
	}

	if opts.Cache != nil {
		opts.Cache.Flush()
	}

	result := model.ScanResult{
		Targets:      targets,
		Findings:     allFindings,
		ScannedFiles: scannedFiles,
		ElapsedMS:    time.Since(start).Milliseconds(),
	}
	metrics.ObserveScanDuration(time.Since(start).Seconds())

	emit(sink, Event{Kind: EventFinish, TotalItems: len(allFindings)})
	return result, nil
}

func (o *Orchestrator) scanOneTarget(ctx context.Context, t model.Target, opts Options, sched *scheduler.Scheduler, sink Sink) (target.ContentPlan, []model.Finding, int) {
	_, span := tracer.Start(ctx, "orchestrator.scanTarget", trace.WithAttributes(attribute.String("target.name", t.Name)))
	defer span.End()

	plan, err := target.Build(ctx, t, opts.TargetOptions, o.logger)
	if err != nil {
		o.logger.Warn("orchestrator: failed to build content plan, target contributes no findings", zap.String("target", t.Name), zap.Error(err))
		return plan, nil, 0
	}

	metrics.SetQueueDepth(len(plan.Items))
	scanned, findings := sched.Run(ctx, plan.Items, o.engine, func(ev scheduler.Event) {
		switch ev.Kind {
		case "file_complete":
			emit(sink, Event{Kind: EventFileComplete, TargetName: t.Name, VirtualPath: ev.VirtualPath})
		case "finding_batch":
			emit(sink, Event{Kind: EventFindingBatch, TargetName: t.Name, VirtualPath: ev.VirtualPath, Findings: ev.Findings})
		}
	})
	metrics.SetQueueDepth(0)

	findings = meta.Dedupe(findings)
	return plan, findings, scanned
}

// ExitCode returns the process exit code for result under floor: 0 when
// clean or no floor is configured, 2 when any finding meets or exceeds
// floor.
func ExitCode(result model.ScanResult, floor rules.Severity) int {
	if floor == "" {
		return 0
	}
	for _, f := range result.Findings {
		if !f.Severity.Less(floor) {
			return 2
		}
	}
	return 0
}

func emit(sink Sink, ev Event) {
	if sink != nil {
		sink(ev)
	}
}
