// Package audit keeps a tamper-evident, hash-chained record of ledger events.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const genesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// LogEntry is one link of the chain.
type LogEntry struct {
	Sequence     uint64 `json:"sequence"`
	Timestamp    string `json:"timestamp"`
	Event        string `json:"event"`
	PreviousHash string `json:"previous_hash"`
	Payload      string `json:"payload"`
	Hash         string `json:"hash"`
}

// ChainLogger appends entries whose hash covers the previous entry's hash, so
// any edit or removal breaks verification. Entries are optionally streamed to a
// writer as JSON lines and the most recent ones are retained in memory.
type ChainLogger struct {
	mu           sync.Mutex
	previousHash string
	sequence     uint64
	out          io.Writer
	retain       int
	entries      []*LogEntry
	now          func() time.Time
}

// NewChainLogger streams to out when it is non-nil and keeps the last retain
// entries (0 keeps none).
func NewChainLogger(out io.Writer, retain int) *ChainLogger {
	return &ChainLogger{
		previousHash: genesisHash,
		out:          out,
		retain:       retain,
		now:          time.Now,
	}
}

// Append records a free-form payload under the "note" event.
func (c *ChainLogger) Append(payload string) (*LogEntry, error) {
	return c.append("note", payload)
}

// AppendEvent records v as a JSON payload.
func (c *ChainLogger) AppendEvent(event string, v any) (*LogEntry, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit payload: %w", err)
	}
	return c.append(event, string(b))
}

// append links a new entry onto the chain. When the sink rejects the write the
// chain does not advance, so the streamed file never references a missing entry.
func (c *ChainLogger) append(event, payload string) (*LogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &LogEntry{
		Sequence:     c.sequence + 1,
		Timestamp:    c.now().UTC().Format(time.RFC3339Nano),
		Event:        event,
		PreviousHash: c.previousHash,
		Payload:      payload,
	}
	entry.Hash = entryHash(entry, entry.PreviousHash)

	if c.out != nil {
		b, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to encode audit entry: %w", err)
		}
		if _, err := c.out.Write(append(b, '\n')); err != nil {
			return nil, fmt.Errorf("failed to write audit entry %d: %w", entry.Sequence, err)
		}
	}
	c.sequence = entry.Sequence
	c.previousHash = entry.Hash

	if c.retain > 0 {
		c.entries = append(c.entries, entry)
		if over := len(c.entries) - c.retain; over > 0 {
			c.entries = append(c.entries[:0:0], c.entries[over:]...)
		}
	}
	return entry, nil
}

// Entries returns a copy of the retained entries, oldest first.
func (c *ChainLogger) Entries() []*LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Head is the hash of the latest entry.
func (c *ChainLogger) Head() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previousHash
}

func entryHash(e *LogEntry, prev string) string {
	input := strings.Join([]string{prev, fmt.Sprint(e.Sequence), e.Timestamp, e.Event, e.Payload}, "|")
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// VerifyChain checks that entries link to each other and that every hash
// matches its content. The first entry's previous hash is trusted as given.
func VerifyChain(entries []*LogEntry) bool {
	for i, entry := range entries {
		prev := entry.PreviousHash
		if i > 0 {
			prev = entries[i-1].Hash
			if entry.PreviousHash != prev || entry.Sequence != entries[i-1].Sequence+1 {
				return false
			}
		}
		if entryHash(entry, prev) != entry.Hash {
			return false
		}
	}
	return true
}
