package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Kind identifies where a message lives and which access rule applies to it.
type Kind string

const (
	// KindChannel is an ordinary message posted to a channel.
	KindChannel Kind = "channel"
	// KindDM is a direct message between two users.
	KindDM Kind = "dm"
	// KindSummary is a generated summary of channel activity.
	KindSummary Kind = "summary"
)

// MessageIDFromContent generates a deterministic message ID from text content using BLAKE2b hashing.
// Identical content produces identical IDs.
func MessageIDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Message is a stored message as the relational store knows it.
// Channel and summary messages carry ChannelID; direct messages carry SenderID and ReceiverID.
type Message struct {
	ID         string
	Kind       Kind
	ChannelID  string
	UserID     string // Author
	UserName   string // Author display name
	SenderID   string
	ReceiverID string
	Content    string
	CreatedAt  time.Time
}

// Document is a message together with its embedding, as stored for semantic retrieval.
type Document struct {
	Message
	Vector []float32
}

// VisibleTo reports whether userID may see the document.
// Only direct messages are restricted.
func (d *Document) VisibleTo(userID string) bool {
	if d.Kind != KindDM {
		return true
	}
	return d.SenderID == userID || d.ReceiverID == userID
}

// Source describes where a retrieved message came from.
// It is one of ChannelSource, DirectSource or SummarySource.
type Source interface {
	Kind() Kind
	isSource()
}

// ChannelSource marks a message posted to a channel.
type ChannelSource struct {
	ChannelID string
}

// DirectSource marks a direct message. Participants are filled in once
// the message has passed the permission filter.
type DirectSource struct {
	SenderID    string
	ReceiverID  string
	OtherUserID string
}

// SummarySource marks a generated channel summary.
type SummarySource struct {
	ChannelID string
}

func (ChannelSource) Kind() Kind { return KindChannel }
func (DirectSource) Kind() Kind  { return KindDM }
func (SummarySource) Kind() Kind { return KindSummary }

func (ChannelSource) isSource() {}
func (DirectSource) isSource()  {}
func (SummarySource) isSource() {}

// SourceFor builds the Source variant matching a stored message.
func SourceFor(m *Message) Source {
	switch m.Kind {
	case KindDM:
		return DirectSource{SenderID: m.SenderID, ReceiverID: m.ReceiverID}
	case KindSummary:
		return SummarySource{ChannelID: m.ChannelID}
	default:
		return ChannelSource{ChannelID: m.ChannelID}
	}
}

// RetrievalSource builds the Source reported by retrieval backends.
// Direct-message participants are withheld until access has been checked.
func RetrievalSource(m *Message) Source {
	if m.Kind == KindDM {
		return DirectSource{}
	}
	return SourceFor(m)
}

// Metadata identifies a retrieved message and its origin.
type Metadata struct {
	MessageID string
	UserID    string
	UserName  string
	CreatedAt time.Time
	Source    Source
}

// Kind returns the kind of the underlying source, defaulting to channel.
func (m Metadata) Kind() Kind {
	if m.Source == nil {
		return KindChannel
	}
	return m.Source.Kind()
}

// ChannelID returns the channel for channel and summary messages, or "".
func (m Metadata) ChannelID() string {
	switch s := m.Source.(type) {
	case ChannelSource:
		return s.ChannelID
	case SummarySource:
		return s.ChannelID
	}
	return ""
}

// SearchResult is a single retrieval candidate.
// Score is rescored at each pipeline stage. A zero score from a retriever means the hit was not scored.
type SearchResult struct {
	Content  string
	Metadata Metadata
	Score    float64
}

// NewSearchResult builds a retrieval candidate for a stored message.
func NewSearchResult(m *Message, score float64) SearchResult {
	return SearchResult{
		Content: m.Content,
		Metadata: Metadata{
			MessageID: m.ID,
			UserID:    m.UserID,
			UserName:  m.UserName,
			CreatedAt: m.CreatedAt,
			Source:    RetrievalSource(m),
		},
		Score: score,
	}
}

// DirectMessageRecord is the participant information for a direct message.
type DirectMessageRecord struct {
	ID         string
	SenderID   string
	ReceiverID string
}

// EvidenceItem is a message surfaced alongside an answer.
type EvidenceItem struct {
	Content     string    `json:"content"`
	MessageID   string    `json:"messageId"`
	ChannelID   string    `json:"channelId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	UserName    string    `json:"userName,omitempty"`
	Type        Kind      `json:"type"`
	SenderID    string    `json:"senderId,omitempty"`
	ReceiverID  string    `json:"receiverId,omitempty"`
	OtherUserID string    `json:"otherUserId,omitempty"`
}

// Answer is the result of a search: synthesized text plus supporting evidence.
type Answer struct {
	Answer            string         `json:"answer"`
	Evidence          []EvidenceItem `json:"evidence"`
	AdditionalContext string         `json:"additionalContext,omitempty"`
}
