package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"zhamesh/internal/domain"
)

// TypeResult is the frame type of a command reply
const TypeResult = "result"

type devicesReply struct {
	ID      int          `json:"id"`
	Type    string       `json:"type"`
	Success bool         `json:"success"`
	Result  []wireDevice `json:"result"`
	Error   *wireError   `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wireDevice struct {
	IEEE          string         `json:"ieee"`
	UserGivenName *string        `json:"user_given_name"`
	DeviceType    string         `json:"device_type"`
	Nwk           flexString     `json:"nwk"`
	LQI           flexInt        `json:"lqi"`
	RSSI          flexInt        `json:"rssi"`
	LastSeen      string         `json:"last_seen"`
	Available     bool           `json:"available"`
	Neighbors     []wireNeighbor `json:"neighbors"`
}

type wireNeighbor struct {
	IEEE         string     `json:"ieee"`
	DeviceType   string     `json:"device_type"`
	LQI          flexInt    `json:"lqi"`
	Relationship string     `json:"relationship"`
	Depth        flexInt    `json:"depth"`
	Nwk          flexString `json:"nwk"`
}

// DecodeDevices parses a zha/devices reply into a snapshot captured at
// capturedAt. A reply with success=false decodes without error; the
// reconciler decides what to do with it.
func DecodeDevices(raw []byte, capturedAt time.Time) (*domain.Snapshot, error) {
	var reply devicesReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse devices reply: %w", err)
	}
	if reply.Type != TypeResult {
		return nil, fmt.Errorf("unexpected frame type %q", reply.Type)
	}

	snap := &domain.Snapshot{
		RequestID:  reply.ID,
		Success:    reply.Success,
		CapturedAt: capturedAt,
		Devices:    make([]domain.DeviceEntry, 0, len(reply.Result)),
	}
	if reply.Error != nil {
		snap.ErrorCode = reply.Error.Code
		snap.ErrorMessage = reply.Error.Message
	}

	for _, wd := range reply.Result {
		snap.Devices = append(snap.Devices, wd.toEntry())
	}

	return snap, nil
}

func (wd wireDevice) toEntry() domain.DeviceEntry {
	entry := domain.DeviceEntry{
		Address:        wd.IEEE,
		Role:           domain.ParseDeviceRole(wd.DeviceType),
		NetworkAddress: string(wd.Nwk),
		LQI:            domain.OptionalInt(wd.LQI),
		RSSI:           domain.OptionalInt(wd.RSSI),
		LastSeen:       wd.LastSeen,
		Available:      wd.Available,
		Neighbors:      make([]domain.NeighborEntry, 0, len(wd.Neighbors)),
	}
	if wd.UserGivenName != nil {
		entry.Name = *wd.UserGivenName
	}

	for _, wn := range wd.Neighbors {
		entry.Neighbors = append(entry.Neighbors, domain.NeighborEntry{
			Address:        wn.IEEE,
			Role:           domain.ParseDeviceRole(wn.DeviceType),
			LQI:            domain.OptionalInt(wn.LQI).OrZero(),
			Relationship:   wn.Relationship,
			Depth:          domain.OptionalInt(wn.Depth).OrZero(),
			NetworkAddress: string(wn.Nwk),
		})
	}

	return entry
}
