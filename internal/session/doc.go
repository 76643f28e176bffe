// Package session talks to the Home Assistant websocket API.
//
// A Client holds one authenticated connection and issues zha/devices
// queries with per-connection request ids starting at 1. A Loop drives the
// client on a fixed interval, hands each decoded snapshot to a Handler and
// reconnects after transport failures.
package session
