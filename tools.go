//go:build tools

package tools

// Mocks under pkg/*/mocks are generated by mockery v3 from .mockery.yml.
// mockery is an installed binary, so nothing is imported here.
// Run: mockery (from the module root).
