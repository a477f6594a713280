package multiband

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassaes67/engine/shared"
)

type bufCloser struct{ *bytes.Buffer }

func (bufCloser) Close() error { return nil }

func TestStatsReportWritesIndentedSummary(t *testing.T) {
	var s Stats
	s.recordSamples(480)
	s.recordPeaks(0.5, 0.4)
	s.recordBandGainReductionDB(0, -3.5)

	buf := &bytes.Buffer{}
	p, err := shared.NewPrinter("  ", shared.NewWriteCloser(bufCloser{buf}))
	require.NoError(t, err)

	require.NoError(t, s.Report(p, 3))

	out := buf.String()
	assert.Contains(t, out, "samples processed: 480")
	assert.Contains(t, out, "band 0 gain reduction: -3.50dB")
}
