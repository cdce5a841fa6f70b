// Package index provides the retrieval collaborator used by search.
//
// Index implements storage.VectorIndex with two genuinely different strategies:
// semantic queries embed the text and scan BadgerDB documents by cosine
// similarity, while lexical queries run a BM25 match against a Bleve index.
// Both return scores in [0,1].
//
//	docs, _ := badger.NewMemoryDocumentStore()
//	lex, _ := bleve.NewMemoryLexicalIndex()
//	idx, _ := index.New(docs, lex, provider.Embedder())
//	_ = idx.Index(ctx, messages...)
//	results, _ := idx.Query(ctx, "open roles", storage.QueryOptions{Limit: 20, Mode: storage.ModeLexical})
package index
