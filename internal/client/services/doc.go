// Package services contains the per-resource coordination layer between the
// UI, the local cache, the pending-action queue, and the remote gateway.
//
// # Read contract
//
// List methods return a channel that carries at most two snapshots: the
// current cache state immediately (merged with unresolved pending actions
// rendered as placeholders), then a refreshed snapshot if the remote fetch
// succeeds. A connectivity failure during refresh is not an error for a list
// read; the cached emission already happened.
//
// # Write contract
//
// Submit methods validate against locally known bounds first, then attempt
// the remote call. A connectivity failure turns the write into a durable
// PendingAction plus an optimistic placeholder returned to the caller as
// success; a server rejection propagates verbatim and is never queued.
//
// # Merge rule
//
// Displayed lists are placeholders first (newest first), then confirmed
// records (newest first), deduplicated by server id. Optimistic balance
// deductions are derived at read time from queued disbursements and never
// written into the cached server snapshot.
package services
