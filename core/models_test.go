package core

import (
	"testing"
)

func TestMessageIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := MessageIDFromContent(tt.content)
			id2 := MessageIDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("MessageIDFromContent() produced different IDs for same content: %s vs %s", id1, id2)
			}
			if len(id1) != 16 {
				t.Errorf("MessageIDFromContent() length = %d, want 16", len(id1))
			}
		})
	}
}

func TestMessageIDFromContent_Different(t *testing.T) {
	if MessageIDFromContent("content1") == MessageIDFromContent("content2") {
		t.Errorf("MessageIDFromContent() produced same ID for different content")
	}
}

func TestSourceFor(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want Source
	}{
		{
			name: "channel message",
			msg:  Message{Kind: KindChannel, ChannelID: "general"},
			want: ChannelSource{ChannelID: "general"},
		},
		{
			name: "direct message",
			msg:  Message{Kind: KindDM, SenderID: "alice", ReceiverID: "bob"},
			want: DirectSource{SenderID: "alice", ReceiverID: "bob"},
		},
		{
			name: "summary",
			msg:  Message{Kind: KindSummary, ChannelID: "eng"},
			want: SummarySource{ChannelID: "eng"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SourceFor(&tt.msg)
			if got != tt.want {
				t.Errorf("SourceFor() = %#v, want %#v", got, tt.want)
			}
			if got.Kind() != tt.msg.Kind {
				t.Errorf("Kind() = %q, want %q", got.Kind(), tt.msg.Kind)
			}
		})
	}
}

func TestMetadata_KindAndChannel(t *testing.T) {
	var empty Metadata
	if empty.Kind() != KindChannel {
		t.Errorf("Kind() of empty metadata = %q, want channel", empty.Kind())
	}

	dm := Metadata{Source: DirectSource{SenderID: "a", ReceiverID: "b"}}
	if dm.ChannelID() != "" {
		t.Errorf("ChannelID() of a DM = %q, want empty", dm.ChannelID())
	}

	summary := Metadata{Source: SummarySource{ChannelID: "eng"}}
	if summary.ChannelID() != "eng" {
		t.Errorf("ChannelID() = %q, want eng", summary.ChannelID())
	}
}

func TestNewSearchResult(t *testing.T) {
	t.Run("direct message withholds participants", func(t *testing.T) {
		m := &Message{ID: "d1", Kind: KindDM, SenderID: "alice", ReceiverID: "bob", UserID: "alice", Content: "hi"}
		r := NewSearchResult(m, 0.7)

		if r.Metadata.Source != (DirectSource{}) {
			t.Errorf("Source = %#v, want empty DirectSource", r.Metadata.Source)
		}
		if r.Metadata.Kind() != KindDM {
			t.Errorf("Kind() = %s, want dm", r.Metadata.Kind())
		}
		if r.Score != 0.7 || r.Content != "hi" || r.Metadata.MessageID != "d1" {
			t.Errorf("unexpected result %#v", r)
		}
	})

	t.Run("channel message keeps channel", func(t *testing.T) {
		m := &Message{ID: "c1", Kind: KindChannel, ChannelID: "general", Content: "hi"}
		r := NewSearchResult(m, 0)

		if got := r.Metadata.ChannelID(); got != "general" {
			t.Errorf("ChannelID() = %q, want general", got)
		}
	})
}
