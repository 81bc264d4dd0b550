// Package querysql renders a strategy.Strategy as SQL text.
//
// Clauses are emitted in a fixed order, each at most once:
//
//	SELECT ... FROM ... [JOIN ...]* [WHERE] [GROUP BY] [HAVING] [ORDER BY] [LIMIT];
//
// Rendering is deterministic: the same strategy always yields byte-identical
// SQL. No schema validation and no escaping happen here; filter and HAVING
// fragments are trusted to come from the strategy package's templates.
package querysql
