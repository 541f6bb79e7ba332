// Package monad provides an optional read-only RPC client for Monad
// networks. When configured, action results for transaction sends carry a
// chain snapshot so callers can correlate the custodial response with the
// live network state.
package monad
