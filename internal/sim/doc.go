// Package sim is an in-process mesh: a scripted BLE radio, in-memory
// bearers, and a stack that provisions simulated devices and answers
// configuration and generic messages the way real nodes do.
//
// Messages cross the simulated network as encoded access PDUs, so the
// wire codecs are exercised on both ends. Replies are delivered
// asynchronously from the stack's own executor.
package sim
