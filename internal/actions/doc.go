// Package actions maps the fixed set of Privy wallet intents to typed
// handlers. Each invocation re-resolves credentials, performs at most a
// small fixed number of sequential remote calls, and folds every failure
// into a {success, response} envelope for the host agent framework.
package actions
