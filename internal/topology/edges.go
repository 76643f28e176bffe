package topology

import "zhamesh/internal/domain"

// EdgeTable holds the last link quality each device reported per neighbor
type EdgeTable struct {
	lqi   map[domain.EdgeKey]int
	order []domain.EdgeKey
}

// NewEdgeTable creates an empty edge table
func NewEdgeTable() *EdgeTable {
	return &EdgeTable{lqi: make(map[domain.EdgeKey]int)}
}

// Record stores the quality source reported for target, replacing any
// earlier value
func (t *EdgeTable) Record(source, target string, lqi int) {
	key := domain.EdgeKey{Source: source, Target: target}
	if _, ok := t.lqi[key]; !ok {
		t.order = append(t.order, key)
	}
	t.lqi[key] = lqi
}

// Get returns the recorded quality, or 0 if the pair was never recorded
func (t *EdgeTable) Get(source, target string) int {
	return t.lqi[domain.EdgeKey{Source: source, Target: target}]
}

// RemoveDevice drops every edge that starts or ends at address
func (t *EdgeTable) RemoveDevice(address string) int {
	removed := 0
	order := t.order[:0]
	for _, key := range t.order {
		if key.Source == address || key.Target == address {
			delete(t.lqi, key)
			removed++
			continue
		}
		order = append(order, key)
	}
	t.order = order
	return removed
}

// Len returns the number of recorded edges
func (t *EdgeTable) Len() int {
	return len(t.lqi)
}

// Edges returns all edges in first-record order
func (t *EdgeTable) Edges() []domain.Edge {
	edges := make([]domain.Edge, 0, len(t.order))
	for _, key := range t.order {
		edges = append(edges, domain.Edge{Source: key.Source, Target: key.Target, LQI: t.lqi[key]})
	}
	return edges
}
