// Package domain defines the core types for the zhamesh Zigbee mesh monitor.
//
// This package contains the entities and value objects shared by the
// reconciliation engine, the snapshot decoder and the sinks. It has no
// database or transport dependencies.
//
// # Core Types
//
// Device is the last known state of a Zigbee device as tracked by the
// device registry, keyed by its IEEE address.
//
// Edge is a directed neighbor relationship (source hears target) with the
// link quality the source reported for it.
//
// Snapshot is one decoded reply of the hub's zha/devices query: the device
// list as the hub saw it at capture time.
//
// # Emitted Records
//
// Observation is one immutable fact per (snapshot, device, neighbor) triple.
// OfflineFlag marks a device the hub reports as unavailable. Both are
// grouped per snapshot into a Pass, which is what the sinks receive.
//
// # Bands
//
// LinkBand and StaleBand derive a severity from the raw numbers carried by
// an Observation, so presentation never needs the registry.
package domain
