package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainLogger_VerifyChain(t *testing.T) {
	logger := NewChainLogger(nil, 10)

	e1, err := logger.Append("account 123400000001 opened")
	require.NoError(t, err)
	e2, err := logger.AppendEvent("transaction.completed", map[string]string{"id": "TXN1", "amount": "500.00"})
	require.NoError(t, err)
	e3, err := logger.Append("account 123400000001 deactivated")
	require.NoError(t, err)

	chain := []*LogEntry{e1, e2, e3}
	require.True(t, VerifyChain(chain))
	assert.Equal(t, genesisHash, e1.PreviousHash)
	assert.Equal(t, e3.Hash, logger.Head())

	original := e2.Payload
	e2.Payload = `{"id":"TXN1","amount":"5000.00"}`
	assert.False(t, VerifyChain(chain), "tampered payload")
	e2.Payload = original

	originalHash := e2.Hash
	e2.Hash = "deadbeef"
	assert.False(t, VerifyChain(chain), "tampered hash")
	e2.Hash = originalHash

	assert.False(t, VerifyChain([]*LogEntry{e1, e3}), "removed entry")
}

func TestChainLogger_RetainsMostRecent(t *testing.T) {
	logger := NewChainLogger(nil, 2)
	logger.Append("a")
	logger.Append("b")
	logger.Append("c")

	entries := logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Payload)
	assert.Equal(t, "c", entries[1].Payload)
	assert.True(t, VerifyChain(entries))
}

func TestChainLogger_StreamsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewChainLogger(&buf, 0)
	logger.Append("a")
	logger.Append("b")

	var got []*LogEntry
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var e LogEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		got = append(got, &e)
	}
	require.Len(t, got, 2)
	assert.True(t, VerifyChain(got))
	assert.Empty(t, logger.Entries())
}

type flakyWriter struct {
	buf  bytes.Buffer
	fail bool
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.fail {
		return 0, errors.New("disk full")
	}
	return w.buf.Write(p)
}

func TestChainLogger_SinkFailureIsReported(t *testing.T) {
	w := &flakyWriter{}
	logger := NewChainLogger(w, 10)

	_, err := logger.Append("a")
	require.NoError(t, err)
	head := logger.Head()

	w.fail = true
	_, err = logger.AppendEvent("transfer.manual_review", map[string]string{"ref_no": "REF1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, head, logger.Head(), "chain must not advance past an unwritten entry")
	assert.Len(t, logger.Entries(), 1)

	w.fail = false
	e, err := logger.Append("b")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), e.Sequence)

	segs, err := ReadSegments(&w.buf)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.True(t, VerifySegment(segs[0]))
}
