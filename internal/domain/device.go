package domain

import "time"

// DeviceRole is the Zigbee logical device type reported by the hub
type DeviceRole string

const (
	RoleCoordinator DeviceRole = "Coordinator"
	RoleRouter      DeviceRole = "Router"
	RoleEndDevice   DeviceRole = "EndDevice"
	RoleUnknown     DeviceRole = "Unknown"

	// RolePlaceholder marks the default template and synthesized neighbors.
	// The hub never reports it.
	RolePlaceholder DeviceRole = "*"
)

// ParseDeviceRole maps the hub vocabulary to a DeviceRole.
// Anything unrecognized becomes RoleUnknown.
func ParseDeviceRole(s string) DeviceRole {
	switch DeviceRole(s) {
	case RoleCoordinator, RoleRouter, RoleEndDevice, RolePlaceholder:
		return DeviceRole(s)
	default:
		return RoleUnknown
	}
}

// IsLeaf reports whether the role is an end device or a synthesized placeholder
func (r DeviceRole) IsLeaf() bool {
	return r == RoleEndDevice || r == RolePlaceholder
}

// Availability is the three-valued availability of a device
type Availability string

const (
	AvailabilityOnline  Availability = "true"
	AvailabilityOffline Availability = "false"
	// AvailabilityUnknown only comes from the default template
	AvailabilityUnknown Availability = "unk"
)

// AvailabilityFromBool converts the hub's boolean flag
func AvailabilityFromBool(available bool) Availability {
	if available {
		return AvailabilityOnline
	}
	return AvailabilityOffline
}

// Device is the registry's last known state of a Zigbee device
type Device struct {
	Address        string       `json:"address"`
	Name           string       `json:"name"`
	Role           DeviceRole   `json:"role"`
	NetworkAddress string       `json:"network_address"`
	LQI            int          `json:"lqi"`
	RSSI           int          `json:"rssi"`
	LastSeen       time.Time    `json:"last_seen"`
	Available      Availability `json:"available"`
	IsNeighbor     bool         `json:"is_neighbor"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// DefaultDevice returns the template used when an address is not in the
// registry. It must never be stored.
func DefaultDevice(address string, capturedAt time.Time) Device {
	return Device{
		Address:   address,
		Role:      RolePlaceholder,
		LQI:       -1,
		RSSI:      0,
		LastSeen:  capturedAt,
		Available: AvailabilityUnknown,
	}
}

// DisplayName returns the name shown for the device. The hub does not allow
// naming the coordinator, so it is always shown by role.
func (d Device) DisplayName() string {
	if d.Role == RoleCoordinator {
		return string(RoleCoordinator)
	}
	return d.Name
}
