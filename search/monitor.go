package search

import (
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// ExpansionResolved and RetrievalCall are invoked from worker goroutines and
// must be safe for concurrent use.
type SearchMonitor interface {
	Start(query, userID string)
	ExpansionResolved(source ExpansionSource)
	RetrievalCall(mode storage.Mode, results int, err error)
	AfterRetrieval(lists [][]core.SearchResult)
	AfterFusion(fused []core.SearchResult)
	AfterPermissionFilter(permitted []core.SearchResult)
	Finish(answer *core.Answer, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                            {}
func (n *noopMonitor) ExpansionResolved(_ ExpansionSource)          {}
func (n *noopMonitor) RetrievalCall(_ storage.Mode, _ int, _ error) {}
func (n *noopMonitor) AfterRetrieval(_ [][]core.SearchResult)       {}
func (n *noopMonitor) AfterFusion(_ []core.SearchResult)            {}
func (n *noopMonitor) AfterPermissionFilter(_ []core.SearchResult)  {}
func (n *noopMonitor) Finish(_ *core.Answer, _ error)               {}
