package flowgrid

import (
	"database/sql"
	"log/slog"

	"github.com/jhalonen/flowgrid/internal/engine"
	"github.com/jhalonen/flowgrid/internal/persistence"
	"github.com/jhalonen/flowgrid/pkg/api"
	"github.com/jhalonen/flowgrid/pkg/runner"
)

// Re-exported core types so callers only import the root package.
type (
	// Collection is a named bag of values flowing through a channel.
	Collection = api.Collection
	// ChannelMap binds channel names to collections.
	ChannelMap = api.ChannelMap
	// StepOutputs holds every executed step's channel outputs, keyed by step id.
	StepOutputs = api.StepOutputs
	// Step is a unit of graph work with declared input and output channels.
	Step = api.Step
	// Graph wires steps together and runs them in dependency order.
	Graph = api.Graph

	// Row is a single record in a batch pipeline.
	Row = api.Row
	// Batch is a contiguous, numbered slice of rows.
	Batch = api.Batch
	// Source produces sequentially numbered batches until exhausted.
	Source = api.Source
	// Transform is a named per-batch processing stage.
	Transform = api.Transform
	// Frontier records durable batch progress.
	Frontier = api.Frontier

	// Observer receives run, step, and batch lifecycle events.
	Observer = api.Observer
	// NoopObserver ignores every event.
	NoopObserver = api.NoopObserver
	// LoggingObserver writes events to a slog.Logger.
	LoggingObserver = api.LoggingObserver
	// BasicMetrics counts events with atomic counters.
	BasicMetrics = api.BasicMetrics
	// BasicMetricsSnapshot is a point-in-time copy of BasicMetrics counters.
	BasicMetricsSnapshot = api.BasicMetricsSnapshot

	// Runner drives a batch pipeline with checkpoint-resume.
	Runner = runner.Runner
	// RunnerConfig controls optional Runner behavior.
	RunnerConfig = runner.Config
)

// Re-exported error types for errors.As matching.
type (
	DuplicateStepError   = api.DuplicateStepError
	UnknownStepError     = api.UnknownStepError
	InvalidChannelError  = api.InvalidChannelError
	ChannelConflictError = api.ChannelConflictError
	CycleError           = api.CycleError
	AmbiguousEntryError  = api.AmbiguousEntryError
	BatchSourceError     = api.BatchSourceError
	TransformError       = api.TransformError
)

// DefaultBatchSize is the row count per fetch when RunnerConfig.BatchSize
// is unset.
const DefaultBatchSize = runner.DefaultBatchSize

// NewFrontier returns an empty progress record: no batch committed yet.
func NewFrontier() *Frontier {
	return api.NewFrontier()
}

// NewGraph creates an empty execution graph with no observer attached.
func NewGraph() Graph {
	return engine.New(nil)
}

// NewGraphWithObserver creates an empty execution graph that reports
// lifecycle events to the given observer.
func NewGraphWithObserver(obs Observer) Graph {
	return engine.New(obs)
}

// NewLoggingObserver returns an observer that logs events through logger.
// A nil logger uses slog.Default.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	return api.NewLoggingObserver(logger)
}

// NewCompositeObserver fans events out to every non-nil observer.
func NewCompositeObserver(observers ...Observer) Observer {
	return api.NewCompositeObserver(observers...)
}

// NewBasicMetrics returns a metrics-collecting observer.
func NewBasicMetrics() *BasicMetrics {
	return api.NewBasicMetrics()
}

// NewMemoryRunner creates a batch runner backed by in-memory stores.
// Progress does not survive the process; useful for tests and examples.
func NewMemoryRunner(source Source, transforms []Transform, cfg RunnerConfig) (*Runner, error) {
	store := persistence.NewMemoryStore()
	return runner.New(source, transforms, persistence.Stores{
		Frontier:    store,
		Checkpoints: store,
	}, cfg)
}

// NewFileRunner creates a batch runner that persists the frontier and
// checkpoints as JSON files under dir.
func NewFileRunner(source Source, transforms []Transform, dir string, cfg RunnerConfig) (*Runner, error) {
	store, err := persistence.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return runner.New(source, transforms, persistence.Stores{
		Frontier:    store,
		Checkpoints: store,
	}, cfg)
}

// NewSQLiteRunner creates a batch runner that persists progress in the
// given SQLite database. The schema is created if missing.
func NewSQLiteRunner(source Source, transforms []Transform, db *sql.DB, cfg RunnerConfig) (*Runner, error) {
	store, err := persistence.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return runner.New(source, transforms, persistence.Stores{
		Frontier:    store,
		Checkpoints: store,
	}, cfg)
}
