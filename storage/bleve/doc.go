// Package bleve provides keyword retrieval over message content using Bleve's
// BM25 scoring.
//
// The index stores only message content keyed by message ID. Callers hydrate
// hits from the document store; see the index package.
package bleve
