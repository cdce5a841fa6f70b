// Package search answers questions over a user's message history.
//
// A search runs in five stages:
//   - analysis classifies intent and normalizes the query
//   - retrieval fans out semantic and lexical calls per query variation,
//     plus one call for an LLM or synonym expansion
//   - fusion merges the ranked lists with reciprocal rank scoring and
//     intent heuristics
//   - permission filtering keeps only messages the user may see
//   - assembly boosts direct messages, keeps the top results and asks the
//     completer for an answer
//
// Use SearchMonitor to observe each stage.
package search
