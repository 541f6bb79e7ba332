// Package api exposes a small REST surface for listing and invoking the
// registered Privy actions. It is intended for hosts that integrate over
// HTTP rather than embedding the plugin directly.
package api
