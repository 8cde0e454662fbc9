// Package config loads runtime configuration for the starterkit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-d string   directory for the local token database
//	-u int      avatar upload timeout (seconds)
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for durations, so values can be either
// strings like "30s" or integer nanoseconds. Absent keys keep earlier values:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "data_dir": ".starterkit",
//	  "upload_timeout": "60s",
//	  "online_check_interval": "5s"
//	}
package config
