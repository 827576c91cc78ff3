// Package config loads runtime configuration for the credline client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-d string   path to the local SQLite database
//	-i int      online status check interval (seconds)
//	-w int      periodic sync wake-up interval (seconds)
//	-t int      per-request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://api.credline.example",
//	  "database_path": "credline.db",
//	  "online_check_interval": "3s",
//	  "sync_wake_interval": "30s",
//	  "request_timeout": "10s"
//	}
package config
