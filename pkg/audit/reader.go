package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Segment is one process lifetime of a chain: a run of entries starting at
// sequence 1 from the genesis hash.
type Segment struct {
	StartLine int
	Entries   []*LogEntry
}

// ReadSegments parses a JSON-lines audit stream. A new segment starts at each
// entry with sequence 1.
func ReadSegments(r io.Reader) ([]Segment, error) {
	var (
		out  []Segment
		line int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if e.Sequence == 1 || len(out) == 0 {
			out = append(out, Segment{StartLine: line})
		}
		seg := &out[len(out)-1]
		seg.Entries = append(seg.Entries, &e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifySegment checks a segment links back to the genesis hash.
func VerifySegment(s Segment) bool {
	if len(s.Entries) == 0 {
		return true
	}
	if s.Entries[0].Sequence != 1 || s.Entries[0].PreviousHash != genesisHash {
		return false
	}
	return VerifyChain(s.Entries)
}
