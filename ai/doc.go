// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ai provides abstractions for the language model services used by recollect.
//
// Two capabilities are needed by the search engine:
//
//   - Embedder: turns message and query text into vectors for the semantic index
//   - Completer: rephrases queries for retrieval and synthesizes answers from evidence
//
// AIProvider bundles both so they share configuration and lifecycle.
//
// # Implementation Packages
//
//   - ai/openai: production implementation over OpenAI-compatible APIs (langchaingo)
//   - ai/mock: test doubles with injectable behavior and call counters
//
// Public constructors in ai/openai return interface types. Mock constructors return
// concrete types so tests can inject behavior and assert on call counts.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	answer, err := provider.Completer().Complete(ctx, "What did we decide?", contextBlock)
package ai
