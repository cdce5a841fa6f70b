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

package search

import "errors"

var (
	// ErrIndexRequired is returned when a retrieval index is not provided.
	ErrIndexRequired = errors.New("retrieval index required")

	// ErrMessageRepositoryRequired is returned when a message repository is not provided.
	ErrMessageRepositoryRequired = errors.New("message repository required")

	// ErrCompleterRequired is returned when a completer is not provided.
	ErrCompleterRequired = errors.New("completer required")

	// ErrInvalidConfig is returned when search tunables are out of range.
	ErrInvalidConfig = errors.New("invalid search configuration")

	// ErrInvalidQuery is returned for an empty query or user id.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrSearchFailed wraps every hard failure of a search.
	ErrSearchFailed = errors.New("search failed")

	// ErrRetrievalFailed is returned when every retrieval call of a search failed.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrPermissionLookupFailed is returned when access to candidates could not be checked.
	ErrPermissionLookupFailed = errors.New("permission lookup failed")

	// ErrSynthesisFailed is returned when the answer could not be generated.
	ErrSynthesisFailed = errors.New("answer synthesis failed")
)
