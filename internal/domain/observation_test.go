package domain

import (
	"testing"
	"time"
)

func TestSubDayMinutes(t *testing.T) {
	tests := []struct {
		name  string
		delta time.Duration
		want  float64
	}{
		{"zero", 0, 0},
		{"five seconds", 5 * time.Second, 5.0 / 60.0},
		{"ninety seconds", 90 * time.Second, 1.5},
		{"fractional seconds truncate", 5*time.Second + 900*time.Millisecond, 5.0 / 60.0},
		// Known defect kept on purpose: whole days are dropped.
		{"multi-day gap under-reports", 26*time.Hour + 2*time.Minute, 122},
		{"exactly one day reads as zero", 24 * time.Hour, 0},
		// Negative deltas wrap like a day-normalized duration.
		{"negative wraps", -30 * time.Second, (86400.0 - 30.0) / 60.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubDayMinutes(tt.delta); got != tt.want {
				t.Errorf("SubDayMinutes(%v) = %v, want %v", tt.delta, got, tt.want)
			}
		})
	}
}

func TestSnapshotSequence(t *testing.T) {
	snap := &Snapshot{RequestID: 1}
	if got := snap.Sequence(); got != 0 {
		t.Errorf("expected sequence 0 for request 1, got %d", got)
	}
}

func TestSnapshotAddresses(t *testing.T) {
	snap := &Snapshot{Devices: []DeviceEntry{{Address: "a"}, {Address: "b"}}}
	addrs := snap.Addresses()
	if len(addrs) != 2 || addrs[0] != "a" || addrs[1] != "b" {
		t.Errorf("expected [a b], got %v", addrs)
	}
}

func TestTopologyViewFindDevice(t *testing.T) {
	view := &TopologyView{Devices: []Device{{Address: "a", Name: "Plug"}}}

	d, ok := view.FindDevice("a")
	if !ok || d.Name != "Plug" {
		t.Errorf("expected to find 'Plug', got %v (ok=%v)", d, ok)
	}
	if _, ok := view.FindDevice("missing"); ok {
		t.Error("expected missing device not to be found")
	}
}
