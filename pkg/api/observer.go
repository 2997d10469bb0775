package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the graph engine and the batch runner
// for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay execution.
type Observer interface {
	// OnRunStart is called once per graph or batch run, before any step
	// executes. steps is the number of registered steps for graph runs and
	// the number of configured transforms for batch runs.
	OnRunStart(ctx context.Context, runID string, steps int)

	// OnRunCompleted is called when a run finishes without error.
	OnRunCompleted(ctx context.Context, runID string)

	// OnRunFailed is called when a run aborts with an error.
	OnRunFailed(ctx context.Context, runID string, err error)

	// OnStepStart is called before a step's Process is invoked.
	// position is the step's index in the execution order.
	OnStepStart(ctx context.Context, runID, stepID string, position int)

	// OnStepCompleted is called after Process returns, for both successes
	// and failures (err != nil).
	OnStepCompleted(ctx context.Context, runID, stepID string, position int, err error, duration time.Duration)

	// OnStepSkipped is called when a step receives no inputs for this run
	// and is skipped entirely.
	OnStepSkipped(ctx context.Context, runID, stepID string)

	// OnBatchStart is called after a batch is fetched, before any
	// transform runs. rows is the fetched batch size.
	OnBatchStart(ctx context.Context, runID string, batchID int64, rows int)

	// OnBatchCommitted is called after a batch has been checkpointed and
	// the frontier durably advanced.
	OnBatchCommitted(ctx context.Context, runID string, batchID int64, frontier *Frontier)

	// OnBatchFailed is called when fetching, transforming, or persisting a
	// batch fails. The frontier still reflects the last committed batch.
	OnBatchFailed(ctx context.Context, runID string, batchID int64, err error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(ctx context.Context, runID string, steps int)              {}
func (NoopObserver) OnRunCompleted(ctx context.Context, runID string)                     {}
func (NoopObserver) OnRunFailed(ctx context.Context, runID string, err error)             {}
func (NoopObserver) OnStepStart(ctx context.Context, runID, stepID string, position int)  {}
func (NoopObserver) OnStepCompleted(ctx context.Context, runID, stepID string, position int, err error, d time.Duration) {
}
func (NoopObserver) OnStepSkipped(ctx context.Context, runID, stepID string)                 {}
func (NoopObserver) OnBatchStart(ctx context.Context, runID string, batchID int64, rows int) {}
func (NoopObserver) OnBatchCommitted(ctx context.Context, runID string, batchID int64, f *Frontier) {
}
func (NoopObserver) OnBatchFailed(ctx context.Context, runID string, batchID int64, err error) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnRunStart(ctx context.Context, runID string, steps int) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, runID, steps)
	}
}

func (c *CompositeObserver) OnRunCompleted(ctx context.Context, runID string) {
	for _, o := range c.observers {
		o.OnRunCompleted(ctx, runID)
	}
}

func (c *CompositeObserver) OnRunFailed(ctx context.Context, runID string, err error) {
	for _, o := range c.observers {
		o.OnRunFailed(ctx, runID, err)
	}
}

func (c *CompositeObserver) OnStepStart(ctx context.Context, runID, stepID string, position int) {
	for _, o := range c.observers {
		o.OnStepStart(ctx, runID, stepID, position)
	}
}

func (c *CompositeObserver) OnStepCompleted(ctx context.Context, runID, stepID string, position int, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnStepCompleted(ctx, runID, stepID, position, err, d)
	}
}

func (c *CompositeObserver) OnStepSkipped(ctx context.Context, runID, stepID string) {
	for _, o := range c.observers {
		o.OnStepSkipped(ctx, runID, stepID)
	}
}

func (c *CompositeObserver) OnBatchStart(ctx context.Context, runID string, batchID int64, rows int) {
	for _, o := range c.observers {
		o.OnBatchStart(ctx, runID, batchID, rows)
	}
}

func (c *CompositeObserver) OnBatchCommitted(ctx context.Context, runID string, batchID int64, f *Frontier) {
	for _, o := range c.observers {
		o.OnBatchCommitted(ctx, runID, batchID, f)
	}
}

func (c *CompositeObserver) OnBatchFailed(ctx context.Context, runID string, batchID int64, err error) {
	for _, o := range c.observers {
		o.OnBatchFailed(ctx, runID, batchID, err)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs run / step / batch
// lifecycle events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, runID string, steps int) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("run_id", runID),
		slog.Int("steps", steps),
	)
}

func (o *LoggingObserver) OnRunCompleted(ctx context.Context, runID string) {
	o.Logger.InfoContext(ctx, "run_completed",
		slog.String("run_id", runID),
	)
}

func (o *LoggingObserver) OnRunFailed(ctx context.Context, runID string, err error) {
	o.Logger.ErrorContext(ctx, "run_failed",
		slog.String("run_id", runID),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnStepStart(ctx context.Context, runID, stepID string, position int) {
	o.Logger.DebugContext(ctx, "step_start",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.Int("position", position),
	)
}

func (o *LoggingObserver) OnStepCompleted(ctx context.Context, runID, stepID string, position int, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "step_completed",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.Int("position", position),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnStepSkipped(ctx context.Context, runID, stepID string) {
	o.Logger.DebugContext(ctx, "step_skipped",
		slog.String("run_id", runID),
		slog.String("step", stepID),
	)
}

func (o *LoggingObserver) OnBatchStart(ctx context.Context, runID string, batchID int64, rows int) {
	o.Logger.DebugContext(ctx, "batch_start",
		slog.String("run_id", runID),
		slog.Int64("batch_id", batchID),
		slog.Int("rows", rows),
	)
}

func (o *LoggingObserver) OnBatchCommitted(ctx context.Context, runID string, batchID int64, f *Frontier) {
	o.Logger.InfoContext(ctx, "batch_committed",
		slog.String("run_id", runID),
		slog.Int64("batch_id", batchID),
		slog.Int64("last_completed_row", f.LastCompletedRow),
		slog.Int64("total_rows_processed", f.TotalRowsProcessed),
	)
}

func (o *LoggingObserver) OnBatchFailed(ctx context.Context, runID string, batchID int64, err error) {
	o.Logger.ErrorContext(ctx, "batch_failed",
		slog.String("run_id", runID),
		slog.Int64("batch_id", batchID),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate step durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	runsStarted       atomic.Int64
	runsCompleted     atomic.Int64
	runsFailed        atomic.Int64
	stepsCompleted    atomic.Int64
	stepsSkipped      atomic.Int64
	totalStepDuration atomic.Int64 // nanoseconds
	batchesCommitted  atomic.Int64
	batchesFailed     atomic.Int64
	rowsProcessed     atomic.Int64
}

// NewBasicMetrics creates a zeroed metrics collector.
func NewBasicMetrics() *BasicMetrics {
	return &BasicMetrics{}
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64
	ActiveRuns    int64

	StepsCompleted  int64
	StepsSkipped    int64
	AvgStepDuration time.Duration

	BatchesCommitted int64
	BatchesFailed    int64
	RowsProcessed    int64
}

func (m *BasicMetrics) OnRunStart(ctx context.Context, runID string, steps int) {
	m.runsStarted.Add(1)
}

func (m *BasicMetrics) OnRunCompleted(ctx context.Context, runID string) {
	m.runsCompleted.Add(1)
}

func (m *BasicMetrics) OnRunFailed(ctx context.Context, runID string, err error) {
	m.runsFailed.Add(1)
}

func (m *BasicMetrics) OnStepCompleted(ctx context.Context, runID, stepID string, position int, err error, d time.Duration) {
	// Only count successful steps for average duration.
	if err == nil {
		m.stepsCompleted.Add(1)
		m.totalStepDuration.Add(d.Nanoseconds())
	}
}

func (m *BasicMetrics) OnStepSkipped(ctx context.Context, runID, stepID string) {
	m.stepsSkipped.Add(1)
}

func (m *BasicMetrics) OnBatchCommitted(ctx context.Context, runID string, batchID int64, f *Frontier) {
	m.batchesCommitted.Add(1)
	m.rowsProcessed.Store(f.TotalRowsProcessed)
}

func (m *BasicMetrics) OnBatchFailed(ctx context.Context, runID string, batchID int64, err error) {
	m.batchesFailed.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.runsStarted.Load()
	completed := m.runsCompleted.Load()
	failed := m.runsFailed.Load()
	steps := m.stepsCompleted.Load()
	totalNs := m.totalStepDuration.Load()

	var avg time.Duration
	if steps > 0 {
		avg = time.Duration(totalNs / steps)
	}

	return BasicMetricsSnapshot{
		RunsStarted:      started,
		RunsCompleted:    completed,
		RunsFailed:       failed,
		ActiveRuns:       started - completed - failed,
		StepsCompleted:   steps,
		StepsSkipped:     m.stepsSkipped.Load(),
		AvgStepDuration:  avg,
		BatchesCommitted: m.batchesCommitted.Load(),
		BatchesFailed:    m.batchesFailed.Load(),
		RowsProcessed:    m.rowsProcessed.Load(),
	}
}
