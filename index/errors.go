package index

import "errors"

var (
	// ErrDocumentStoreRequired indicates that no document store was supplied.
	ErrDocumentStoreRequired = errors.New("document store required")

	// ErrLexicalIndexRequired indicates that no lexical index was supplied.
	ErrLexicalIndexRequired = errors.New("lexical index required")

	// ErrEmbedderRequired indicates that no embedder was supplied.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrUnknownMode indicates a query mode the index does not support.
	ErrUnknownMode = errors.New("unknown retrieval mode")

	// ErrEmbeddingMismatch indicates the embedder returned the wrong number of vectors.
	ErrEmbeddingMismatch = errors.New("embedding result mismatch")
)
