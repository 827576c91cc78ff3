// Package pending provides the client-side persistence layer for the
// pending-action queue.
//
// # Overview
//
// The package defines a Repository interface for queue operations on
// PendingAction models (see internal/client/models). A SQLite-backed
// implementation (SQLiteRepository) persists data using a dbx.DBTX.
//
// # Data Model
//
// Each row stores a client-generated local id, the action kind, the
// serialized request payload, a creation timestamp, the lifecycle status,
// the server id once confirmed, a retry counter, and the last error message.
// The queue is partitioned by kind; within a kind rows drain FIFO by
// creation time.
//
// # Lifecycle
//
// PENDING -> SENDING -> CONFIRMED (row deleted) or FAILED (row kept until
// acknowledged). SENDING falls back to PENDING on transient failure, and is
// reset to PENDING at startup since in-flight state does not survive a
// process restart.
//
// Key Types
//
//   - type Repository        — interface used by services and the sync worker
//   - type SQLiteRepository  — SQLite implementation over dbx.DBTX
package pending
