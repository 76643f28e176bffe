package domain

import (
	"math"
	"time"
)

// Observation is one emitted fact per (snapshot, device, neighbor)
type Observation struct {
	Sequence   int       `json:"sequence"`
	CapturedAt time.Time `json:"captured_at"`

	NeighborAddress   string       `json:"neighbor_address"`
	NeighborName      string       `json:"neighbor_name"`
	NeighborKnown     bool         `json:"neighbor_known"`
	NeighborLQI       int          `json:"neighbor_lqi"`
	NeighborRSSI      int          `json:"neighbor_rssi"`
	NeighborLastSeen  time.Time    `json:"neighbor_last_seen"`
	ElapsedMinutes    float64      `json:"elapsed_minutes"`
	NeighborRole      DeviceRole   `json:"neighbor_role"`
	NeighborAvailable Availability `json:"neighbor_available"`
	NeighborDepth     int          `json:"neighbor_depth"`
	Relationship      string       `json:"relationship"`

	PeerNetworkAddress string       `json:"peer_network_address"`
	PeerLQI            int          `json:"peer_lqi"`
	PeerRSSI           int          `json:"peer_rssi"`
	PeerAvailable      Availability `json:"peer_available"`
	PeerAddress        string       `json:"peer_address"`

	// Presentation context
	PeerName       string     `json:"peer_name"`
	PeerRole       DeviceRole `json:"peer_role"`
	PeerIsNeighbor bool       `json:"peer_is_neighbor"`
}

// LinkBand is the severity of the neighbor's reconciled link quality
func (o Observation) LinkBand() Band {
	return LinkBand(o.NeighborLQI, o.NeighborRole)
}

// PeerLinkBand is the severity of the raw peer link quality
func (o Observation) PeerLinkBand() Band {
	return LinkBand(o.PeerLQI, o.PeerRole)
}

// StaleBand is the severity of the time since the neighbor was last seen
func (o Observation) StaleBand() Band {
	return StaleBand(o.ElapsedMinutes, o.NeighborRole)
}

// OfflineFlag marks a device the hub reports as unavailable
type OfflineFlag struct {
	Sequence       int        `json:"sequence"`
	CapturedAt     time.Time  `json:"captured_at"`
	Address        string     `json:"address"`
	Name           string     `json:"name"`
	Role           DeviceRole `json:"role"`
	LastSeen       time.Time  `json:"last_seen"`
	ElapsedMinutes float64    `json:"elapsed_minutes"`
	IsNeighbor     bool       `json:"is_neighbor"`
}

// StaleBand is the severity of the time since the device was last seen
func (f OfflineFlag) StaleBand() Band {
	return StaleBand(f.ElapsedMinutes, f.Role)
}

// Pass is the ordered output of reconciling one snapshot
type Pass struct {
	Sequence     int           `json:"sequence"`
	CapturedAt   time.Time     `json:"captured_at"`
	Setup        bool          `json:"setup"`
	Observations []Observation `json:"observations"`
	Offline      []OfflineFlag `json:"offline"`
	// Removed lists addresses evicted by the sweep policy
	Removed []string `json:"removed,omitempty"`
	// Skipped holds per-device errors; those devices were not updated
	Skipped []error `json:"-"`
}

// TopologyView is a read-only copy of the engine state after a pass
type TopologyView struct {
	Sequence   int       `json:"sequence"`
	CapturedAt time.Time `json:"captured_at"`
	Devices    []Device  `json:"devices"`
	Edges      []Edge    `json:"edges"`
}

// FindDevice returns the device with the given address
func (v *TopologyView) FindDevice(address string) (Device, bool) {
	for _, d := range v.Devices {
		if d.Address == address {
			return d, true
		}
	}
	return Device{}, false
}

// SubDayMinutes converts a delta to minutes using only its sub-day seconds
// component: whole days are dropped and negative deltas wrap around, so a
// gap of 1 day 2 minutes reads as 2 minutes.
func SubDayMinutes(d time.Duration) float64 {
	secs := int64(math.Floor(d.Seconds()))
	rem := secs % 86400
	if rem < 0 {
		rem += 86400
	}
	return float64(rem) / 60.0
}
