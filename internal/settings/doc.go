// Package settings resolves plugin credentials from a host supplied
// key-value lookup capability. Credentials are re-resolved on every action
// invocation so the plugin never caches secrets between calls.
package settings
