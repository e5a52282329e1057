// Package config loads runtime configuration for the QueueVault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults), with the shared
//     secret seeded from the APP_SECRET environment variable.
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-r string   base URL of the signing relay
//	-s string   shared HMAC secret
//	-d string   path to the local SQLite database file
//	-e string   path to the events catalog JSON file
//
// # JSON schema
//
//	{
//	  "relay_url": "http://127.0.0.1:8787",
//	  "relay_route": "/api/github",
//	  "app_secret": "change-me",
//	  "database_path": "queuevault.db",
//	  "events_file": "events.json"
//	}
package config
