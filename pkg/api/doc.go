// Package api defines the public contracts of the flowgrid engine.
//
// It contains the types shared between the graph engine, the batch runner,
// and application code:
//
//   - Step, Collection, ChannelMap, StepOutputs: the graph-side contract.
//     A Step declares its input and output channel names and transforms
//     channel-indexed collections. The engine routes collections between
//     steps along channel-qualified connections.
//
//   - Graph: the engine interface. Graphs are built with AddStep and
//     Connect, validated, ordered topologically, and run strictly
//     sequentially.
//
//   - Batch, Row, Source, Transform: the batch-side contract. A Source
//     yields sequentially numbered bounded chunks; Transforms process one
//     batch at a time.
//
//   - Frontier: the durable progress record driving checkpoint-resume.
//     It only moves forward, and only after a batch has passed every
//     configured transform.
//
//   - Observer: lifecycle callbacks for logging and metrics, with Noop,
//     Composite, Logging (log/slog), and BasicMetrics implementations.
//
//   - The error taxonomy: DuplicateStepError, UnknownStepError,
//     InvalidChannelError, ChannelConflictError, CycleError,
//     AmbiguousEntryError for graph construction and execution;
//     BatchSourceError and TransformError for batch runs. All are
//     matchable with errors.As and carry the offending step, channel, or
//     batch identifiers.
//
// Most applications import the root flowgrid package, which re-exports
// these types, rather than this package directly.
package api
