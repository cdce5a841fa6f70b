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

import (
	"fmt"
	"time"
)

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Kind must be valid
//   - Channel and summary messages need a ChannelID
//   - Direct messages need both SenderID and ReceiverID
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - ID (assigned from content when empty)
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if msg.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateKind(msg.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	switch msg.Kind {
	case KindChannel, KindSummary:
		if msg.ChannelID == "" {
			return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrMissingChannel)
		}
	case KindDM:
		if msg.SenderID == "" || msg.ReceiverID == "" {
			return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrMissingParticipants)
		}
	}

	if !IsValidTimestamp(msg.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateKind validates that a Kind has a known value.
func ValidateKind(kind Kind) error {
	switch kind {
	case KindChannel, KindDM, KindSummary:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidKind, kind)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
