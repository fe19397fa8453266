// Package provisioning drives one unprovisioned device at a time through
// the provisioning protocol: bearer connect, identify, capability exchange,
// key exchange, and finally persisting the new node.
//
// The cryptographic exchange itself belongs to the mesh stack, reached
// through Registry and ProtocolSession. Controller only sequences it,
// reports progress as events, and guarantees that every session is torn
// down exactly once.
//
// All controller state changes run on the executor passed as Config.Post.
// Bearer and protocol callbacks may arrive on any goroutine; they are
// posted to the executor and ignored if their session has since ended.
package provisioning
