package flowgrid

import (
	"database/sql"
	"log/slog"
)

// RunnerBundle packages a batch runner with a metrics collector so
// applications get progress counters without extra wiring.
type RunnerBundle struct {
	Runner  *Runner
	Metrics *BasicMetrics
}

// NewSQLiteBundle creates a SQLite-backed runner with logging and metrics
// observers attached. A nil logger uses slog.Default.
func NewSQLiteBundle(source Source, transforms []Transform, db *sql.DB, logger *slog.Logger, cfg RunnerConfig) (*RunnerBundle, error) {
	metrics := NewBasicMetrics()
	cfg.Observer = NewCompositeObserver(
		NewLoggingObserver(logger),
		metrics,
		cfg.Observer,
	)
	r, err := NewSQLiteRunner(source, transforms, db, cfg)
	if err != nil {
		return nil, err
	}
	return &RunnerBundle{Runner: r, Metrics: metrics}, nil
}
