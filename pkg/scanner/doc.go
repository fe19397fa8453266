// Package scanner discovers nearby mesh devices.
//
// A Scanner listens for advertisements carrying the Mesh Provisioning
// (0x1827) or Mesh Proxy (0x1828) service and keeps the latest observation
// per peripheral. Observations survive StopScan/StartScan cycles and are
// only dropped by Reset.
//
// Scanning while the radio is powered off is not an error: the request is
// remembered and the scan starts as soon as the radio reports it is ready.
package scanner
