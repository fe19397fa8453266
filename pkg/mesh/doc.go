// Package mesh defines the Bluetooth mesh domain types shared by the
// scanner, provisioning and configuration layers.
//
// The types mirror what a mesh configuration database stores: nodes with
// elements and models, network and application keys, and groups. The
// Network interface is the narrow view through which the controllers read
// and extend that database; the database itself belongs to the mesh stack.
package mesh
