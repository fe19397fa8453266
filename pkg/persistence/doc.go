// Package persistence holds the mesh configuration database: the network
// keys, application keys, groups and provisioned nodes known to the
// provisioner, and the JSON file store they survive restarts in.
package persistence
