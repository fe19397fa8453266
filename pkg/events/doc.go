// Package events carries progress and result events from the controllers
// to whoever drives them (a CLI, a UI bridge, tests).
//
// Controllers emit through the Sink interface. Emitter is the standard
// Sink: Emit never blocks the caller, and events reach every subscriber in
// emission order on a dedicated goroutine.
package events
