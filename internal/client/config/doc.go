// Package config loads runtime configuration for the files manager CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL or host:port of the API server
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//	-d string   download directory
//
// # JSON schema
//
//	{
//	  "server_addr": "http://127.0.0.1:5000",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "download_dir": "downloads"
//	}
package config
