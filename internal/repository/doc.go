// Package repository defines the data access interfaces for zhamesh.
//
// The repository persists the historical trail produced by reconciliation
// passes: one row per neighbor observation, one row per offline flag, and
// the last known name of every device that was seen as a known neighbor.
// The implementation is in the sqlite subpackage.
//
// # Schema Migration
//
// The sqlite repository creates its tables on startup. Every process run
// gets a fresh run id so rows from different runs can be told apart; the
// sequence number restarts at 0 with every websocket connection.
//
// # Testing
//
// The sqlite repository is tested with in-memory databases.
package repository
