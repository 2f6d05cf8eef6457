// Package config handles configuration loading for wspoll.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Every field has a default, so a missing file is not an error for
// callers that use Default().
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from WSPOLL_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/wspoll/config.yaml
//  3. ~/.config/wspoll/config.yaml
//
// Files ending in .toml are decoded as TOML, everything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	fetch:
//	  user_agent: "${WSPOLL_USER_AGENT}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	session:
//	  handshake_timeout: "10s"
//	  read_retry_interval: "20ms"
//
// # Configuration Sections
//
// Session (WebSocket connections):
//
//	session:
//	  handshake_timeout: "10s"    # dial + upgrade
//	  read_retry_interval: "20ms" # pause after a recoverable read error
//	  max_read_errors: 3          # consecutive read errors before giving up (1-999)
//	  close_timeout: "5s"         # wait for the peer's close frame
//	  write_timeout: "5s"
//	  read_limit: 0               # max frame size in bytes, 0 = unlimited
//	  poll_interval: "50ms"       # CLI loop sleep between drains
//
// Fetch (one-shot HTTP requests):
//
//	fetch:
//	  timeout: "30s"
//	  user_agent: "wspoll"
//
// Echo endpoint:
//
//	echo:
//	  addr: "127.0.0.1:8080"
//	  path: "/live"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/etc/wspoll/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
