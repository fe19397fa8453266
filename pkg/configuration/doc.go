// Package configuration configures provisioned nodes: it adds an
// application key, fetches composition data with a bounded retry, binds
// the application key to the first recognized server model and its local
// client counterpart, and sets subscriptions and publications.
//
// The flow is driven by status messages arriving through Handle. Each
// status opcode maps to a pure handler that returns follow-up actions
// (send a message, arm or cancel the composition retry, advance or finish
// the node's session, emit an event); the Controller executes them.
//
// Only composition data is retried. Bind, subscription and publication
// requests wait for their status indefinitely.
package configuration
