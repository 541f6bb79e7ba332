// Package privy contains the data model and REST clients for Privy's
// policy-based custodial wallet API, together with the pure rule editing
// helpers used to allowlist or denylist token addresses inside a policy.
// Every remote call is a single request/response round trip; the package
// holds no state between calls.
package privy
