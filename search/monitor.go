package search

import "github.com/poiesic/passage/core"

// SearchMonitor provides hooks to observe the search process.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(results []*core.SearchResult)
	VerbatimHit(record *core.Record)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) VerbatimHit(_ *core.Record)                 {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)              {}
