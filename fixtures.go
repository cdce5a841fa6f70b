package recollect

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/recollect/core"
)

// MessageFixture is the JSON form of a message accepted by ReadMessages.
type MessageFixture struct {
	ID         string    `json:"id,omitempty"`
	Kind       core.Kind `json:"kind"`
	ChannelID  string    `json:"channelId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	UserName   string    `json:"userName,omitempty"`
	SenderID   string    `json:"senderId,omitempty"`
	ReceiverID string    `json:"receiverId,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Message converts the fixture to a core.Message. A direct message's
// author defaults to its sender.
func (f MessageFixture) Message() *core.Message {
	m := &core.Message{
		ID:         f.ID,
		Kind:       f.Kind,
		ChannelID:  f.ChannelID,
		UserID:     f.UserID,
		UserName:   f.UserName,
		SenderID:   f.SenderID,
		ReceiverID: f.ReceiverID,
		Content:    f.Content,
		CreatedAt:  f.CreatedAt,
	}
	if m.Kind == core.KindDM && m.UserID == "" {
		m.UserID = m.SenderID
	}
	return m
}

// ReadMessages decodes a JSON array of message fixtures and validates each one.
func ReadMessages(r io.Reader) ([]*core.Message, error) {
	var fixtures []MessageFixture
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}

	messages := make([]*core.Message, len(fixtures))
	for i, f := range fixtures {
		m := f.Message()
		if err := core.ValidateMessage(m); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		messages[i] = m
	}
	return messages, nil
}
