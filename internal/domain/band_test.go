package domain

import "testing"

func TestLinkBand(t *testing.T) {
	tests := []struct {
		lqi  int
		role DeviceRole
		want Band
	}{
		{255, RoleRouter, BandNominal},
		{170, RoleRouter, BandNominal},
		{169, RoleRouter, BandDegraded},
		{85, RoleEndDevice, BandDegraded},
		{84, RoleEndDevice, BandPoor},
		{1, RoleRouter, BandPoor},
		{0, RoleRouter, BandNotAvailable},
		{-1, RolePlaceholder, BandNotAvailable},
		{0, RoleCoordinator, BandPoor},
	}

	for _, tt := range tests {
		if got := LinkBand(tt.lqi, tt.role); got != tt.want {
			t.Errorf("LinkBand(%d, %s) = %s, want %s", tt.lqi, tt.role, got, tt.want)
		}
	}
}

func TestStaleBand(t *testing.T) {
	tests := []struct {
		minutes float64
		role    DeviceRole
		want    Band
	}{
		{0.5, RoleRouter, BandNominal},
		{2, RoleRouter, BandDegraded},
		{6, RoleRouter, BandPoor},
		{20, RoleEndDevice, BandNominal},
		{30, RoleEndDevice, BandDegraded},
		{40, RolePlaceholder, BandPoor},
		{600, RoleCoordinator, BandNominal},
		{600, RoleUnknown, BandNominal},
	}

	for _, tt := range tests {
		if got := StaleBand(tt.minutes, tt.role); got != tt.want {
			t.Errorf("StaleBand(%v, %s) = %s, want %s", tt.minutes, tt.role, got, tt.want)
		}
	}
}

func TestObservationBands(t *testing.T) {
	obs := Observation{
		NeighborLQI:    120,
		NeighborRole:   RoleRouter,
		ElapsedMinutes: 3,
		PeerLQI:        200,
		PeerRole:       RoleCoordinator,
	}

	if got := obs.LinkBand(); got != BandDegraded {
		t.Errorf("LinkBand() = %s, want %s", got, BandDegraded)
	}
	if got := obs.PeerLinkBand(); got != BandNominal {
		t.Errorf("PeerLinkBand() = %s, want %s", got, BandNominal)
	}
	if got := obs.StaleBand(); got != BandDegraded {
		t.Errorf("StaleBand() = %s, want %s", got, BandDegraded)
	}
}

func TestRSSIBand(t *testing.T) {
	tests := []struct {
		rssi int
		want Band
	}{
		{0, BandNotAvailable},
		{-45, BandNominal},
		{-60, BandNominal},
		{-61, BandDegraded},
		{-70, BandDegraded},
		{-71, BandPoor},
		{-95, BandPoor},
	}

	for _, tt := range tests {
		if got := RSSIBand(tt.rssi); got != tt.want {
			t.Errorf("RSSIBand(%d) = %s, want %s", tt.rssi, got, tt.want)
		}
	}
}
