package domain

import (
	"testing"
)

func TestEdgeKey(t *testing.T) {
	t.Run("key matches endpoints", func(t *testing.T) {
		edge := Edge{Source: "a", Target: "b", LQI: 200}
		key := edge.Key()

		if key.Source != "a" {
			t.Errorf("expected Source 'a', got %s", key.Source)
		}
		if key.Target != "b" {
			t.Errorf("expected Target 'b', got %s", key.Target)
		}
	})

	t.Run("direction matters", func(t *testing.T) {
		forward := EdgeKey{Source: "a", Target: "b"}
		backward := EdgeKey{Source: "b", Target: "a"}

		if forward == backward {
			t.Error("expected reversed endpoints to produce a different key")
		}
		if forward.Reverse() != backward {
			t.Errorf("expected Reverse() = %v, got %v", backward, forward.Reverse())
		}
	})

	t.Run("string form", func(t *testing.T) {
		key := EdgeKey{Source: "00:11", Target: "22:33"}
		if got := key.String(); got != "00:11>22:33" {
			t.Errorf("expected '00:11>22:33', got %s", got)
		}
	})
}
