// Package reindex rebuilds the retrieval index from the message repository.
//
// Use it after changing the embedding model or when the document store and
// lexical index have drifted from the relational store. Messages are read
// in ID order, indexed in batches with retries, and progress is reported
// to a writer.
package reindex
