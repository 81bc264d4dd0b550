// Package engine runs the question-answering pipeline.
//
// One call to Engine.Ask is one pipeline run:
//
//  1. Resolve the dataset identifier (configuration error if unknown)
//  2. Read the table list from the dataset's catalog
//  3. Classify intent and fetch an advisory plan (fallback on any failure)
//  4. Resolve a strategy
//  5. Meta strategies are answered from the catalog; unresolved strategies
//     become an "unsupported" outcome with no SQL
//  6. Synthesize, execute, and on an execution failure retry exactly once
//     with the sanitized strategy
//  7. Interpret the rows, record history, bump counters
//
// Each run is sequential and owns no state shared with other runs except
// the injected Metrics and history store, both safe for concurrent use.
// Database connections are acquired per execution and released before
// Execute returns, so the retry always runs on a fresh connection.
package engine
