// Command auditd verifies the hash chain of an audit sink file.
//
//	auditd [path]
//
// The path defaults to AUDIT_SINK. The exit status is 1 when any segment is
// broken.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/retail-ledger/pkg/audit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	flag.Parse()

	path := flag.Arg(0)
	if path == "" {
		path = os.Getenv("AUDIT_SINK")
	}
	if path == "" || path == "stdout" {
		logger.Error("no audit file given", "hint", "pass a path or set AUDIT_SINK")
		os.Exit(2)
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open audit file", "path", path, "error", err)
		os.Exit(2)
	}
	defer f.Close()

	segs, err := audit.ReadSegments(f)
	if err != nil {
		logger.Error("failed to read audit file", "path", path, "error", err)
		os.Exit(2)
	}

	broken := 0
	entries := 0
	for _, s := range segs {
		entries += len(s.Entries)
		if !audit.VerifySegment(s) {
			broken++
			logger.Warn("audit_chain_broken", "path", path, "start_line", s.StartLine, "entries", len(s.Entries))
		}
	}
	fmt.Printf("%s: %d segments, %d entries, %d broken\n", path, len(segs), entries, broken)
	if broken > 0 {
		os.Exit(1)
	}
}
