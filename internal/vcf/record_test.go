package vcf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord_FixedFields(t *testing.T) {
	rec, err := ParseRecord("chr1\t100\trs1\tA\tG\t50\tPASS\tDP=3\tGT:GL\t0|1:.\t1/1:.", 7, DefaultMaxAlleleLen, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, rec.Line)
	assert.Equal(t, "chr1", rec.Chrom)
	assert.Equal(t, int64(100), rec.Pos)
	assert.Equal(t, "rs1", rec.ID)
	assert.Equal(t, "A", rec.Ref)
	assert.Equal(t, "G", rec.Alt)
	assert.Equal(t, 1, rec.RefLen)
	assert.Equal(t, 1, rec.AltLen)
	assert.Equal(t, "50", rec.Qual)
	assert.Equal(t, "PASS", rec.Filter)
	assert.Equal(t, "DP=3", rec.Info)
	assert.Equal(t, "GT:GL", rec.Format)
	assert.Equal(t, "0|1:.\t1/1:.", rec.Samples)
}

func TestParseRecord_SpaceSeparated(t *testing.T) {
	rec, err := ParseRecord("chr1 100 rs1 A G 50 PASS . GT 0|1 1/1", 1, DefaultMaxAlleleLen, nil)
	require.NoError(t, err)
	assert.Equal(t, "GT", rec.Format)
	assert.Equal(t, "0|1 1/1", rec.Samples)
}

func TestParseRecord_NoSamples(t *testing.T) {
	rec, err := ParseRecord("1\t100\t.\tA\tG\t.\t.\t.\tGT", 1, DefaultMaxAlleleLen, nil)
	require.NoError(t, err)
	assert.Equal(t, "", rec.Samples)
}

func TestParseRecord_TooFewFields(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"seven fields", "chr1\t100\trs1\tA\tG\t50\tPASS"},
		{"eight fields", "chr1\t100\trs1\tA\tG\t50\tPASS\t."},
		{"one field", "chr1"},
		{"whitespace only", " \t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(tt.line, 12, DefaultMaxAlleleLen, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTooFewFields)
			assert.Contains(t, err.Error(), "vcf parse error at line 12")
		})
	}
}

func TestParseRecord_BadPosition(t *testing.T) {
	for _, pos := range []string{"abc", "1e5", "12x", "."} {
		line := "1\t" + pos + "\t.\tA\tG\t.\t.\t.\tGT\t0|1"
		_, err := ParseRecord(line, 1, DefaultMaxAlleleLen, nil)
		assert.ErrorIs(t, err, ErrBadPosition, "pos %q", pos)
	}
}

func TestParseRecord_TruncatesLongAlleles(t *testing.T) {
	logger, logs := observedLogger()

	ref := strings.Repeat("A", 30)
	alt := strings.Repeat("C", 12)
	rec, err := ParseRecord("1\t100\t.\t"+ref+"\t"+alt+"\t.\t.\t.\tGT\t0|1", 1, 10, logger)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("A", 10), rec.Ref)
	assert.Equal(t, strings.Repeat("C", 10), rec.Alt)
	assert.Equal(t, 30, rec.RefLen)
	assert.Equal(t, 12, rec.AltLen)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "truncating long allele (30 bp) to 10 bp", entries[0].Message)
	assert.Equal(t, "truncating long allele (12 bp) to 10 bp", entries[1].Message)
}

func TestParseRecord_NoTruncation(t *testing.T) {
	logger, logs := observedLogger()

	ref := strings.Repeat("G", 5000)
	rec, err := ParseRecord("1\t100\t.\t"+ref+"\tG\t.\t.\t.\tGT\t0|1", 1, -1, logger)
	require.NoError(t, err)
	assert.Equal(t, ref, rec.Ref)
	assert.Equal(t, 0, logs.Len())
}

func TestRecord_Classification(t *testing.T) {
	tests := []struct {
		name      string
		ref, alt  string
		snv       bool
		indel     bool
		insertion bool
		deletion  bool
	}{
		{"SNV", "A", "G", true, false, false, false},
		{"deletion", "AT", "A", false, true, false, true},
		{"insertion", "A", "AT", false, true, true, false},
		{"MNV", "AT", "GC", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Ref: tt.ref, Alt: tt.alt, RefLen: len(tt.ref), AltLen: len(tt.alt)}
			assert.Equal(t, tt.snv, r.IsSNV())
			assert.Equal(t, tt.indel, r.IsIndel())
			assert.Equal(t, tt.insertion, r.IsInsertion())
			assert.Equal(t, tt.deletion, r.IsDeletion())
		})
	}
}

func TestRecord_ClassificationUsesOriginalLength(t *testing.T) {
	rec, err := ParseRecord("1\t100\t.\tAAAA\tAAAAAAAA\t.\t.\t.\tGT\t0|1", 1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "AA", rec.Ref)
	assert.Equal(t, "AA", rec.Alt)
	assert.True(t, rec.IsInsertion())
}

func TestRecord_AltAlleles(t *testing.T) {
	r := &Record{Alt: "C,T,G"}
	assert.Equal(t, []string{"C", "T", "G"}, r.AltAlleles())
	assert.False(t, r.IsBiallelic())

	r = &Record{Alt: "C"}
	assert.True(t, r.IsBiallelic())
}

func TestRecord_NormalizeChrom(t *testing.T) {
	tests := []struct {
		chrom string
		want  string
	}{
		{"chr12", "12"},
		{"12", "12"},
		{"chrX", "X"},
		{"MT", "MT"},
		{"", ""},
		{"ch", "ch"},
	}

	for _, tt := range tests {
		r := &Record{Chrom: tt.chrom}
		assert.Equal(t, tt.want, r.NormalizeChrom(), "chrom %q", tt.chrom)
	}
}
