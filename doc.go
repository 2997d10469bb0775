// Package flowgrid is an embeddable data-flow engine for Go applications.
//
// It offers two complementary execution models:
//
//   - Graphs: steps with named input and output channels are wired into a
//     directed acyclic graph, validated, and executed sequentially in
//     dependency order. Data is routed between steps per channel, so a
//     single step can fan out to several consumers and a merge step can
//     combine several producers.
//
//   - Batch pipelines: a Runner pulls sequentially numbered batches of
//     rows from a Source, applies an ordered list of Transforms, and
//     commits a durable Frontier after each batch. An interrupted run can
//     resume from the batch after the last commit, backed by in-memory,
//     file, or SQLite persistence.
//
// Build graphs with NewGraph or the fluent GraphBuilder, and batch
// pipelines with NewMemoryRunner, NewFileRunner, or NewSQLiteRunner.
// Observers (logging, metrics, or custom) can be attached to either model
// for visibility into runs.
package flowgrid
