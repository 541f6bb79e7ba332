// Package config loads the daemon configuration for the Privy plugin,
// covering the HTTP listen address, logging behaviour, and optional Privy
// API overrides. Credentials are never read from configuration files and
// always come from the process environment.
package config
