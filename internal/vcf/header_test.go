package vcf

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func lineSource(lines ...string) LineSource {
	return NewScannerSource(strings.NewReader(strings.Join(lines, "\n")))
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

const columnLine = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT"

func TestReadHeader_SampleCount(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		samples int
	}{
		{"no samples", columnLine, 0},
		{"one sample", columnLine + "\tS1", 1},
		{"two samples", columnLine + "\tS1\tS2", 2},
		{"space separated", "#CHROM POS ID REF ALT QUAL FILTER INFO FORMAT S1 S2", 2},
		{"trailing tab", columnLine + "\tS1\tS2\t", 2},
		{"many samples", columnLine + strings.Repeat("\tS", 100), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHeader(lineSource("##fileformat=VCFv4.2", tt.line), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.samples, h.NumSamples())
			assert.Len(t, h.SampleNames, tt.samples)
		})
	}
}

func TestReadHeader_Counts(t *testing.T) {
	h, err := ReadHeader(lineSource(
		"##fileformat=VCFv4.2",
		"##source=test",
		"##contig=<ID=1>",
		columnLine+"\tNA12878",
		"1\t100\t.\tA\tG\t.\t.\t.\tGT\t0|1",
	), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, h.NumMetaLines())
	assert.Equal(t, 4, h.NumLines())
	assert.Equal(t, []string{"NA12878"}, h.SampleNames)
	assert.Equal(t, "##source=test", h.MetaLines[1])
}

func TestReadHeader_StopsAtColumnLine(t *testing.T) {
	src := lineSource(columnLine+"\tS1", "1\t100\t.\tA\tG\t.\t.\t.\tGT\t0|1")
	_, err := ReadHeader(src, nil)
	require.NoError(t, err)

	line, err := src.ReadLine()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "1\t100"))
}

func TestReadHeader_ColumnNameMismatchWarns(t *testing.T) {
	logger, logs := observedLogger()

	h, err := ReadHeader(lineSource("#CHROM\tPOS\tIDENT\tREF\tALT\tQUAL\tFILTERS\tINFO\tFORMAT\tS1"), logger)
	require.NoError(t, err)
	assert.Equal(t, 1, h.NumSamples())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "expected token 2 to be ID but got 'IDENT'", entries[0].Message)
	assert.Equal(t, "expected token 6 to be FILTER but got 'FILTERS'", entries[1].Message)
}

func TestReadHeader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  error
	}{
		{"empty input", nil, ErrNoHeader},
		{"only metadata", []string{"##fileformat=VCFv4.2"}, ErrNoHeader},
		{"data before column line", []string{"##fileformat=VCFv4.2", "1\t100"}, ErrBadHeaderLine},
		{"single hash comment", []string{"#comment", columnLine}, ErrBadHeaderLine},
		{"short column line", []string{"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO"}, ErrTooFewFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(lineSource(tt.lines...), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

type failingSource struct{}

func (failingSource) ReadLine() (string, error) { return "", io.ErrUnexpectedEOF }

func TestReadHeader_SourceError(t *testing.T) {
	_, err := ReadHeader(failingSource{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, ErrNoHeader)
}
