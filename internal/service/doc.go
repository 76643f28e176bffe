// Package service coordinates a reconciliation pass with everything that
// consumes its results.
//
// # Monitor
//
// Monitor receives decoded snapshots from the session loop, runs them through
// the topology reconciler, and fans the resulting Pass out to the configured
// sinks (SQLite, console). Sink failures are logged and counted but never
// fail the pass. The latest TopologyView is published atomically for the
// read API.
//
// # Event System
//
// Monitor publishes events via EventBus for real-time updates to connected
// clients via Server-Sent Events (SSE): pass_completed, device_offline,
// devices_removed and query_failed. Publishing never blocks; slow
// subscribers miss events.
package service
