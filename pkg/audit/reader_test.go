package audit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSegmentsSplitsOnRestart(t *testing.T) {
	var buf bytes.Buffer
	first := NewChainLogger(&buf, 0)
	first.Append("a")
	first.Append("b")
	second := NewChainLogger(&buf, 0)
	second.Append("c")

	segs, err := ReadSegments(&buf)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Len(t, segs[0].Entries, 2)
	assert.Equal(t, 3, segs[1].StartLine)
	for _, s := range segs {
		assert.True(t, VerifySegment(s))
	}
}

func TestVerifySegmentRejectsTruncatedHead(t *testing.T) {
	var buf bytes.Buffer
	logger := NewChainLogger(&buf, 0)
	logger.Append("a")
	logger.Append("b")
	logger.Append("c")

	lines := strings.SplitN(buf.String(), "\n", 2)
	segs, err := ReadSegments(strings.NewReader(lines[1]))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.True(t, VerifyChain(segs[0].Entries), "the remaining links are intact")
	assert.False(t, VerifySegment(segs[0]), "but the chain no longer starts at genesis")
}

func TestReadSegmentsReportsBadLine(t *testing.T) {
	_, err := ReadSegments(strings.NewReader("{\"sequence\":1}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
