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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidKind indicates an unknown message kind.
	ErrInvalidKind = errors.New("invalid message kind")

	// ErrMissingChannel indicates a channel or summary message without a channel.
	ErrMissingChannel = errors.New("channel id is required")

	// ErrMissingParticipants indicates a direct message without sender or receiver.
	ErrMissingParticipants = errors.New("sender and receiver are required")
)

// ErrMalformedDocument indicates stored document bytes that cannot be decoded.
var ErrMalformedDocument = errors.New("malformed document")
