package topology

import (
	"time"

	"zhamesh/internal/domain"
)

// LastSeenLayout is the hub's last-seen format: ISO-8601 without a zone
const LastSeenLayout = "2006-01-02T15:04:05"

// Registry holds the last known state of every device seen this run
type Registry struct {
	devices  map[string]*domain.Device
	order    []string
	location *time.Location
}

// NewRegistry creates an empty registry. Last-seen values are interpreted
// in loc; nil means time.Local.
func NewRegistry(loc *time.Location) *Registry {
	if loc == nil {
		loc = time.Local
	}
	return &Registry{
		devices:  make(map[string]*domain.Device),
		location: loc,
	}
}

// Upsert folds one snapshot entry into the registry. The neighbor flag of a
// known device is kept; everything else is overwritten, except that
// last-seen never moves backward. On a parse error nothing is changed.
func (r *Registry) Upsert(entry domain.DeviceEntry, observedAt time.Time) (domain.Device, error) {
	lastSeen, err := time.ParseInLocation(LastSeenLayout, entry.LastSeen, r.location)
	if err != nil {
		return domain.Device{}, &TimestampError{Address: entry.Address, Value: entry.LastSeen, Err: err}
	}

	isNeighbor := false
	existing, known := r.devices[entry.Address]
	if known {
		isNeighbor = existing.IsNeighbor
		if existing.LastSeen.After(lastSeen) {
			lastSeen = existing.LastSeen
		}
	}

	device := &domain.Device{
		Address:        entry.Address,
		Name:           entry.Name,
		Role:           entry.Role,
		NetworkAddress: entry.NetworkAddress,
		LQI:            entry.LQI.OrZero(),
		RSSI:           entry.RSSI.OrZero(),
		LastSeen:       lastSeen,
		Available:      domain.AvailabilityFromBool(entry.Available),
		IsNeighbor:     isNeighbor,
		UpdatedAt:      observedAt,
	}

	if !known {
		r.order = append(r.order, entry.Address)
	}
	r.devices[entry.Address] = device

	return *device, nil
}

// Get returns a copy of a registered device
func (r *Registry) Get(address string) (domain.Device, bool) {
	d, ok := r.devices[address]
	if !ok {
		return domain.Device{}, false
	}
	return *d, true
}

// Resolution is the result of Resolve: either a registered device or the
// default template for an unknown address
type Resolution struct {
	device domain.Device
	found  bool
}

// Found reports whether the address is registered
func (r Resolution) Found() bool {
	return r.found
}

// Device returns the registered device or the default template
func (r Resolution) Device() domain.Device {
	return r.device
}

// Resolve looks up an address, falling back to domain.DefaultDevice.
// The template is never inserted.
func (r *Registry) Resolve(address string, capturedAt time.Time) Resolution {
	if d, ok := r.devices[address]; ok {
		return Resolution{device: *d, found: true}
	}
	return Resolution{device: domain.DefaultDevice(address, capturedAt)}
}

// MarkNeighbor flags a registered device as the neighbor of another device.
// Unknown addresses are ignored.
func (r *Registry) MarkNeighbor(address string) bool {
	d, ok := r.devices[address]
	if !ok {
		return false
	}
	d.IsNeighbor = true
	return true
}

// SweepAbsent removes every device whose address is not in present and
// returns the removed addresses in registry order
func (r *Registry) SweepAbsent(present []string) []string {
	keep := make(map[string]struct{}, len(present))
	for _, addr := range present {
		keep[addr] = struct{}{}
	}

	var removed []string
	order := r.order[:0]
	for _, addr := range r.order {
		if _, ok := keep[addr]; ok {
			order = append(order, addr)
			continue
		}
		delete(r.devices, addr)
		removed = append(removed, addr)
	}
	r.order = order

	return removed
}

// Len returns the number of registered devices
func (r *Registry) Len() int {
	return len(r.devices)
}

// Devices returns copies of all devices in first-sighting order
func (r *Registry) Devices() []domain.Device {
	devices := make([]domain.Device, 0, len(r.order))
	for _, addr := range r.order {
		devices = append(devices, *r.devices[addr])
	}
	return devices
}
