package domain

import "fmt"

// EdgeKey identifies a directed neighbor relationship
type EdgeKey struct {
	Source string
	Target string
}

// String renders the key as source>target
func (k EdgeKey) String() string {
	return fmt.Sprintf("%s>%s", k.Source, k.Target)
}

// Reverse returns the key for the opposite direction
func (k EdgeKey) Reverse() EdgeKey {
	return EdgeKey{Source: k.Target, Target: k.Source}
}

// Edge is the last observed link quality the source reported for the target
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	LQI    int    `json:"lqi"`
}

// Key returns the edge identity
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target}
}
