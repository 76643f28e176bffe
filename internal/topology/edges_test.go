package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zhamesh/internal/domain"
)

func TestEdgeTableRoundTrip(t *testing.T) {
	edges := NewEdgeTable()
	edges.Record("a", "b", 42)

	assert.Equal(t, 42, edges.Get("a", "b"))
	assert.Equal(t, 0, edges.Get("b", "a"), "reverse direction is a separate edge")
	assert.Equal(t, 0, edges.Get("x", "y"))
}

func TestEdgeTableLastWriteWins(t *testing.T) {
	edges := NewEdgeTable()
	edges.Record("a", "b", 42)
	edges.Record("a", "b", 7)

	assert.Equal(t, 7, edges.Get("a", "b"))
	assert.Equal(t, 1, edges.Len())
}

func TestEdgeTableRemoveDevice(t *testing.T) {
	edges := NewEdgeTable()
	edges.Record("a", "b", 1)
	edges.Record("b", "c", 2)
	edges.Record("c", "a", 3)

	assert.Equal(t, 2, edges.RemoveDevice("a"))
	assert.Equal(t, []domain.Edge{{Source: "b", Target: "c", LQI: 2}}, edges.Edges())
}

func TestEdgeTableOrder(t *testing.T) {
	edges := NewEdgeTable()
	edges.Record("b", "a", 1)
	edges.Record("a", "b", 2)
	edges.Record("b", "a", 3)

	assert.Equal(t, []domain.Edge{
		{Source: "b", Target: "a", LQI: 3},
		{Source: "a", Target: "b", LQI: 2},
	}, edges.Edges())
}
