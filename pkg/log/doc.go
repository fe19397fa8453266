// Package log captures a machine-readable trace of mesh controller activity.
//
// It is separate from operational logging (slog): every bearer PDU, access
// message, session state change and error can be recorded as an Event and
// written to a CBOR trace file for later inspection with mesh-log.
//
//	// Console, via slog
//	cfg.Trace = log.NewSlogAdapter(slog.Default())
//
//	// File
//	cfg.Trace, _ = log.NewFileLogger("controller.mlog")
//
//	// Both
//	cfg.Trace = log.NewMultiLogger(console, file)
package log
