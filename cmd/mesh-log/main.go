// Command mesh-log views and analyzes mesh protocol trace files.
//
// Trace files are written by mesh-controller when run with -trace.
//
// Usage:
//
//	mesh-log <command> [flags] <file.mlog>
//
// Commands:
//
//	view     View trace in human-readable format
//	export   Export trace to JSON lines or CSV
//	filter   Filter trace and write to new file
//	stats    Show statistics about the trace
//
// Examples:
//
//	# View only access layer messages
//	mesh-log view -layer access mesh.mlog
//
//	# Follow one node
//	mesh-log view -address 0x0002 mesh.mlog
//
//	# Export to CSV
//	mesh-log export -format csv -o mesh.csv mesh.mlog
//
//	# Keep one provisioning session
//	mesh-log filter -session 1a2b3c4d-... -o session.mlog mesh.mlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mesh-lifecycle/mesh-go/cmd/mesh-log/commands"
)

const usage = `mesh-log - Mesh Protocol Trace Analyzer

Usage:
  mesh-log <command> [flags] <file.mlog>

Commands:
  view     View trace in human-readable format
  export   Export trace to JSON lines or CSV
  filter   Filter trace and write to new file
  stats    Show statistics about the trace

Use "mesh-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "export":
		err = runExport(args)
	case "filter":
		err = runFilter(args)
	case "stats":
		err = runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs.
func filterFlags(fs *flag.FlagSet, opts *commands.FilterOptions) {
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.DeviceID, "device-id", "", "Filter by BLE device identifier")
	fs.StringVar(&opts.NodeUUID, "node-uuid", "", "Filter by mesh device UUID")
	fs.StringVar(&opts.Address, "address", "", "Filter by node unicast address (hex or decimal)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (bearer, provisioning, access, service)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
}

func newFlagSet(name, synopsis, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "mesh-log %s - %s\n\nUsage:\n  mesh-log %s %s\n\nFlags:\n", name, synopsis, name, args)
		fs.PrintDefaults()
	}
	return fs
}

// tracePath returns the single positional argument.
func tracePath(fs *flag.FlagSet) (string, error) {
	if fs.NArg() < 1 {
		fs.Usage()
		return "", fmt.Errorf("trace file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string) error {
	fs := newFlagSet("view", "View trace in human-readable format", "[flags] <file.mlog>")
	var opts commands.FilterOptions
	filterFlags(fs, &opts)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := tracePath(fs)
	if err != nil {
		return err
	}
	filter, err := commands.BuildFilter(opts)
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runExport(args []string) error {
	fs := newFlagSet("export", "Export trace to JSON lines or CSV", "[flags] <file.mlog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := tracePath(fs)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output)
}

func runFilter(args []string) error {
	fs := newFlagSet("filter", "Filter trace and write to new file", "[flags] -o <out.mlog> <file.mlog>")
	var opts commands.FilterOptions
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	filterFlags(fs, &opts)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := tracePath(fs)
	if err != nil {
		return err
	}
	if opts.Output == "" {
		fs.Usage()
		return fmt.Errorf("output file (-o) required")
	}
	return commands.RunFilter(path, opts, os.Stdout)
}

func runStats(args []string) error {
	fs := newFlagSet("stats", "Show statistics about the trace", "<file.mlog>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := tracePath(fs)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}
