// Package config
// Author: momentics <momentics@gmail.com>
//
// Relay startup configuration. Values come from Default, then an optional YAML
// file, then NCRELAY_* environment variables; command-line flags are applied by
// the caller before Validate. The bind host must be an IPv4 or IPv6 literal.
package config
