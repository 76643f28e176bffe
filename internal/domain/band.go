package domain

// Band is a derived severity used by presentation
type Band string

const (
	BandNominal  Band = "nominal"
	BandDegraded Band = "degraded"
	BandPoor     Band = "poor"
	// BandNotAvailable means no usable link quality was reported
	BandNotAvailable Band = "na"
)

// LQI thresholds
const (
	LQINominal  = 170
	LQIDegraded = 85
)

// RSSI thresholds in dBm
const (
	RSSIDegraded = -60
	RSSIPoor     = -70
)

// LinkBand classifies a link quality value. Role only matters for the
// coordinator, whose links are never reported as missing.
func LinkBand(lqi int, role DeviceRole) Band {
	switch {
	case lqi <= 0 && role != RoleCoordinator:
		return BandNotAvailable
	case lqi >= LQINominal:
		return BandNominal
	case lqi >= LQIDegraded:
		return BandDegraded
	default:
		return BandPoor
	}
}

// StaleBand classifies minutes since last seen. Routers are expected to
// chatter constantly; end devices sleep.
func StaleBand(minutes float64, role DeviceRole) Band {
	switch {
	case role == RoleRouter:
		switch {
		case minutes > 5:
			return BandPoor
		case minutes > 1:
			return BandDegraded
		}
	case role.IsLeaf():
		switch {
		case minutes > 35:
			return BandPoor
		case minutes > 25:
			return BandDegraded
		}
	}
	return BandNominal
}

// RSSIBand classifies a signal strength. Zero is what the hub leaves when
// it has no reading.
func RSSIBand(rssi int) Band {
	switch {
	case rssi == 0:
		return BandNotAvailable
	case rssi < RSSIPoor:
		return BandPoor
	case rssi < RSSIDegraded:
		return BandDegraded
	default:
		return BandNominal
	}
}
