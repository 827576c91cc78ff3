// Package cli implements the interactive credline client shell.
//
// The shell is a thin consumer of the services layer: every command maps to
// one service call, list commands drain the cache-then-refresh channel, and
// the prompt reflects the sync worker's last observed connectivity state.
// Queued writes keep working when the backend is unreachable; the worker
// replays them once the connection returns.
package cli
