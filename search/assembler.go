package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
)

// NoAccessibleInformation is the answer given when no permitted evidence remains.
const NoAccessibleInformation = "I couldn't find any accessible information related to your question."

// Assembler turns permitted results into an answer with supporting evidence.
type Assembler struct {
	completer ai.Completer
	cfg       *Config
	logger    *slog.Logger
}

// NewAssembler creates an assembler that synthesizes answers with completer.
func NewAssembler(completer ai.Completer, cfg *Config, logger *slog.Logger) (*Assembler, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		completer: completer,
		cfg:       cfg,
		logger:    logger.With("component", "assembler"),
	}, nil
}

// Assemble boosts direct messages, keeps the top results and asks the
// completer to answer query from them. The input slice is not modified.
func (a *Assembler) Assemble(ctx context.Context, query string, permitted []core.SearchResult) (*core.Answer, error) {
	if len(permitted) == 0 {
		return &core.Answer{
			Answer:   NoAccessibleInformation,
			Evidence: []core.EvidenceItem{},
		}, nil
	}

	evidence := Rerank(permitted, a.cfg)

	answer, err := a.completer.Complete(ctx, query, FormatContext(evidence))
	if err != nil {
		a.logger.Error("answer synthesis failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	items := make([]core.EvidenceItem, len(evidence))
	for i, r := range evidence {
		items[i] = EvidenceFor(r)
	}

	return &core.Answer{
		Answer:            answer,
		Evidence:          items,
		AdditionalContext: fmt.Sprintf("Found %d relevant messages", len(items)),
	}, nil
}

// Rerank returns a copy of results with the final direct message boost
// applied, re-sorted and truncated to cfg.MaxEvidence.
func Rerank(results []core.SearchResult, cfg *Config) []core.SearchResult {
	out := make([]core.SearchResult, len(results))
	copy(out, results)
	for i := range out {
		if out[i].Metadata.Kind() == core.KindDM {
			out[i].Score += cfg.FinalDirectMessageBoost
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > cfg.MaxEvidence {
		out = out[:cfg.MaxEvidence]
	}
	return out
}

// FormatContext renders results as numbered "[i] name: content" blocks.
func FormatContext(results []core.SearchResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[%d] %s: %s", i+1, r.Metadata.UserName, r.Content)
	}
	return strings.Join(blocks, "\n\n")
}

// EvidenceFor converts a result into an evidence item.
func EvidenceFor(r core.SearchResult) core.EvidenceItem {
	item := core.EvidenceItem{
		Content:   r.Content,
		MessageID: r.Metadata.MessageID,
		ChannelID: r.Metadata.ChannelID(),
		Timestamp: r.Metadata.CreatedAt,
		UserName:  r.Metadata.UserName,
		Type:      r.Metadata.Kind(),
	}
	if src, ok := r.Metadata.Source.(core.DirectSource); ok {
		item.SenderID = src.SenderID
		item.ReceiverID = src.ReceiverID
		item.OtherUserID = src.OtherUserID
	}
	return item
}
