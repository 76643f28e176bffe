package domain

import "time"

const (
	// PlaceholderAddress is the IEEE address of a synthesized neighbor
	PlaceholderAddress = "00:00:00:00:00:00:00:00"
	// PlaceholderNetworkAddress is the network address of a synthesized neighbor
	PlaceholderNetworkAddress = "0x0000"
	// RelationshipNone is the relationship of a synthesized neighbor
	RelationshipNone = "none"
)

// OptionalInt is an integer the hub may report as unknown
type OptionalInt struct {
	Value int
	Valid bool
}

// Some returns a valid OptionalInt
func Some(v int) OptionalInt {
	return OptionalInt{Value: v, Valid: true}
}

// OrZero returns the value, or 0 when unknown
func (o OptionalInt) OrZero() int {
	if !o.Valid {
		return 0
	}
	return o.Value
}

// Snapshot is one decoded zha/devices reply
type Snapshot struct {
	RequestID  int           `json:"request_id"`
	Success    bool          `json:"success"`
	CapturedAt time.Time     `json:"captured_at"`
	Devices    []DeviceEntry `json:"devices"`

	// Populated when Success is false
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Sequence is the zero-based pass number derived from the request id
func (s *Snapshot) Sequence() int {
	return s.RequestID - 1
}

// Addresses returns the addresses of every device in the snapshot
func (s *Snapshot) Addresses() []string {
	addrs := make([]string, 0, len(s.Devices))
	for _, d := range s.Devices {
		addrs = append(addrs, d.Address)
	}
	return addrs
}

// DeviceEntry is one device as reported in a snapshot
type DeviceEntry struct {
	Address        string          `json:"address"`
	Name           string          `json:"name"`
	Role           DeviceRole      `json:"role"`
	NetworkAddress string          `json:"network_address"`
	LQI            OptionalInt     `json:"-"`
	RSSI           OptionalInt     `json:"-"`
	LastSeen       string          `json:"last_seen"`
	Available      bool            `json:"available"`
	Neighbors      []NeighborEntry `json:"neighbors"`
}

// NeighborEntry is one neighbor table row reported by a device
type NeighborEntry struct {
	Address        string     `json:"address"`
	Role           DeviceRole `json:"role"`
	LQI            int        `json:"lqi"`
	Relationship   string     `json:"relationship"`
	Depth          int        `json:"depth"`
	NetworkAddress string     `json:"network_address"`
}

// IsPlaceholder reports whether the neighbor was synthesized for an end device
func (n NeighborEntry) IsPlaceholder() bool {
	return n.Role == RolePlaceholder
}

// PlaceholderNeighbor is the neighbor synthesized for a device that reports
// none, so that every device goes through the same per-neighbor path
func PlaceholderNeighbor(lqi int) NeighborEntry {
	return NeighborEntry{
		Address:        PlaceholderAddress,
		Role:           RolePlaceholder,
		LQI:            lqi,
		Relationship:   RelationshipNone,
		Depth:          0,
		NetworkAddress: PlaceholderNetworkAddress,
	}
}
