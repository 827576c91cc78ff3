// Package common contains shared constants and sentinel errors used across
// credline components.
package common

// IdempotencyKeyHeader carries the client-generated idempotency key on write
// requests, so a replayed pending action cannot be double-processed by a
// backend that honors the key.
const IdempotencyKeyHeader = "X-Idempotency-Key"
