// Package service ties the mesh lifecycle components into one controller.
//
// A Service owns the pieces a mesh provisioner application needs:
//   - a Scanner over a BLE radio
//   - the provisioning controller, one session at a time
//   - the configuration controller and its composition data retry
//   - an asynchronous event emitter for listeners
//
// All controller state transitions run on a single loop. Messages received
// from the mesh stack, bearer callbacks and retry ticks are posted onto it,
// and public operations wait for their turn on it before returning.
//
// Example usage:
//
//	cfg := service.DefaultConfig()
//	svc, err := service.New(stack, radio, bearers, cfg)
//	svc.Start(ctx)
//	defer svc.Stop()
//
//	events, cancel := svc.Events(16)
//	defer cancel()
//	svc.StartScanning()
//	resp := svc.Provision("AA-11")
package service
