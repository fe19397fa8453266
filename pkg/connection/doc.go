// Package connection keeps the Bluetooth adapter powered for the scanner.
//
// A PowerManager repeatedly tries to enable the adapter, backing off
// exponentially with jitter, until it succeeds:
//
//  1. First attempt immediately
//  2. Then 500ms, 1s, 2s, 4s, ... up to 30s between attempts
//  3. Reset to 500ms once the adapter is ready
//
// When the adapter reports power loss the cycle starts again. Consumers
// register OnStateChange to learn when the radio becomes ready.
package connection
