package topology

import (
	"time"

	"zhamesh/internal/domain"
)

// Policy controls optional reconciliation behavior
type Policy struct {
	// SweepAbsent evicts devices missing from the latest snapshot.
	// When false, devices are kept for the whole run.
	SweepAbsent bool
}

// Reconciler folds snapshots into a Registry and EdgeTable
type Reconciler struct {
	registry *Registry
	edges    *EdgeTable
	policy   Policy
	setup    bool
	passes   int
}

// NewReconciler creates a reconciler in setup mode over the given state
func NewReconciler(registry *Registry, edges *EdgeTable, policy Policy) *Reconciler {
	return &Reconciler{
		registry: registry,
		edges:    edges,
		policy:   policy,
		setup:    true,
	}
}

// InSetup reports whether the next successful pass only seeds state
func (r *Reconciler) InSetup() bool {
	return r.setup
}

// Passes returns the number of successfully reconciled snapshots
func (r *Reconciler) Passes() int {
	return r.passes
}

// Registry returns the device registry
func (r *Reconciler) Registry() *Registry {
	return r.registry
}

// Edges returns the edge table
func (r *Reconciler) Edges() *EdgeTable {
	return r.edges
}

// View copies the current state for readers outside the engine
func (r *Reconciler) View(sequence int, capturedAt time.Time) *domain.TopologyView {
	return &domain.TopologyView{
		Sequence:   sequence,
		CapturedAt: capturedAt,
		Devices:    r.registry.Devices(),
		Edges:      r.edges.Edges(),
	}
}

// Reconcile applies one snapshot. A snapshot without a success indicator
// returns a *QueryFailedError and leaves state untouched. Devices with a
// malformed last-seen are skipped and listed in Pass.Skipped.
func (r *Reconciler) Reconcile(snap *domain.Snapshot) (*domain.Pass, error) {
	if !snap.Success {
		return nil, &QueryFailedError{
			RequestID: snap.RequestID,
			Code:      snap.ErrorCode,
			Message:   snap.ErrorMessage,
		}
	}

	pass := &domain.Pass{
		Sequence:   snap.Sequence(),
		CapturedAt: snap.CapturedAt,
		Setup:      r.setup,
	}

	if r.policy.SweepAbsent {
		pass.Removed = r.registry.SweepAbsent(snap.Addresses())
		for _, addr := range pass.Removed {
			r.edges.RemoveDevice(addr)
		}
	}

	var heard []string
	for _, entry := range snap.Devices {
		if err := r.applyDevice(pass, entry); err != nil {
			pass.Skipped = append(pass.Skipped, err)
			continue
		}
		for _, n := range entry.Neighbors {
			heard = append(heard, n.Address)
		}
	}

	// Neighbors listed before their own entry were not registered yet when
	// first marked.
	for _, addr := range heard {
		r.registry.MarkNeighbor(addr)
	}

	if !r.setup {
		pass.Offline = r.offlineFlags(pass)
	}

	r.setup = false
	r.passes++

	return pass, nil
}

// applyDevice upserts one device and walks its neighbors
func (r *Reconciler) applyDevice(pass *domain.Pass, entry domain.DeviceEntry) error {
	peer, err := r.registry.Upsert(entry, pass.CapturedAt)
	if err != nil {
		return err
	}

	neighbors := entry.Neighbors
	if len(neighbors) == 0 {
		neighbors = []domain.NeighborEntry{domain.PlaceholderNeighbor(peer.LQI)}
	}

	for _, neighbor := range neighbors {
		r.registry.MarkNeighbor(neighbor.Address)
		r.edges.Record(peer.Address, neighbor.Address, neighbor.LQI)

		if pass.Setup {
			continue
		}

		// Re-read: the mark above may have landed on the peer itself.
		peer, _ = r.registry.Get(peer.Address)
		pass.Observations = append(pass.Observations, r.observe(pass, peer, neighbor))
	}

	return nil
}

// observe builds the record for one (peer, neighbor) pair. Neighbor state
// comes from the registry as it stands now, which may still be last pass's
// if the neighbor appears later in this snapshot.
func (r *Reconciler) observe(pass *domain.Pass, peer domain.Device, neighbor domain.NeighborEntry) domain.Observation {
	res := r.registry.Resolve(neighbor.Address, pass.CapturedAt)
	nd := res.Device()

	delta := pass.CapturedAt.Sub(nd.LastSeen)
	if neighbor.IsPlaceholder() {
		delta = pass.CapturedAt.Sub(peer.LastSeen)
	}

	return domain.Observation{
		Sequence:   pass.Sequence,
		CapturedAt: pass.CapturedAt,

		NeighborAddress:   neighbor.Address,
		NeighborName:      nd.Name,
		NeighborKnown:     res.Found(),
		NeighborLQI:       r.edges.Get(neighbor.Address, peer.Address),
		NeighborRSSI:      nd.RSSI,
		NeighborLastSeen:  nd.LastSeen,
		ElapsedMinutes:    domain.SubDayMinutes(delta),
		NeighborRole:      neighbor.Role,
		NeighborAvailable: nd.Available,
		NeighborDepth:     neighbor.Depth,
		Relationship:      neighbor.Relationship,

		PeerNetworkAddress: peer.NetworkAddress,
		PeerLQI:            neighbor.LQI,
		PeerRSSI:           peer.RSSI,
		PeerAvailable:      peer.Available,
		PeerAddress:        peer.Address,

		PeerName:       peer.DisplayName(),
		PeerRole:       peer.Role,
		PeerIsNeighbor: peer.IsNeighbor,
	}
}

// offlineFlags lists unavailable devices. The coordinator always reports
// itself unavailable, so it is never flagged.
func (r *Reconciler) offlineFlags(pass *domain.Pass) []domain.OfflineFlag {
	var flags []domain.OfflineFlag
	for _, d := range r.registry.Devices() {
		if d.Available != domain.AvailabilityOffline || d.Role == domain.RoleCoordinator {
			continue
		}
		flags = append(flags, domain.OfflineFlag{
			Sequence:       pass.Sequence,
			CapturedAt:     pass.CapturedAt,
			Address:        d.Address,
			Name:           d.Name,
			Role:           d.Role,
			LastSeen:       d.LastSeen,
			ElapsedMinutes: domain.SubDayMinutes(pass.CapturedAt.Sub(d.LastSeen)),
			IsNeighbor:     d.IsNeighbor,
		})
	}
	return flags
}
