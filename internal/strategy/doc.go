// Package strategy maps a question onto a Query Strategy.
//
// A Strategy is a normalized, schema-bound description of a query: the FROM
// table, its joins, filters, grouping, projection, ordering and limit. It sits
// between natural language and SQL text; the querysql package renders it.
//
// # Resolution order
//
// Resolve lowercases the question and applies the synonym table, then tries:
//
//  1. Meta detection: row-count comparison, table listing, table schema.
//  2. Count shortcut: "how many <table>".
//  3. The template library, in order. A template only runs when every table
//     it needs exists in the catalog.
//
// The first branch that produces a strategy wins. A produced strategy passes
// through Validate before it is returned; a strategy that fails validation is
// replaced by an unresolved one. When nothing matches, the strategy carries a
// risk note and no tables, which callers must treat as "unsupported".
//
// # Literals
//
// Filter fragments are rendered by templates only. Values taken from the
// question are normalized (upper case, "?" removed, hyphens to spaces) and
// quoted with quoteLiteral before they reach a fragment.
package strategy
