// Package output provides writers for decoded genotype data.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vcfgeno/internal/vcf"
)

// Mode selects which decoded values a TabWriter emits per sample.
type Mode int

const (
	ModeGenotypes     Mode = 1 << iota // a|b allele pairs
	ModeProbabilities                  // p0,p1,p2 genotype probabilities
	ModeBoth          = ModeGenotypes | ModeProbabilities
)

// String returns the per-sample cell layout, e.g. "GT:GP".
func (m Mode) String() string {
	switch m {
	case ModeGenotypes:
		return "GT"
	case ModeProbabilities:
		return "GP"
	case ModeBoth:
		return "GT:GP"
	default:
		return "none"
	}
}

// TabWriter writes one tab-delimited row per record with one column per sample.
type TabWriter struct {
	w       *bufio.Writer
	mode    Mode
	columns []string
	buf     []byte
}

// NewTabWriter creates a new tab-delimited writer for the given samples.
func NewTabWriter(w io.Writer, mode Mode, samples []string) *TabWriter {
	columns := []string{"#CHROM", "POS", "ID", "REF", "ALT"}
	columns = append(columns, samples...)
	return &TabWriter{
		w:       bufio.NewWriter(w),
		mode:    mode,
		columns: columns,
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single record. haps holds two alleles per sample and probs
// three probabilities per sample; either may be nil when its mode is off.
func (tw *TabWriter) Write(rec *vcf.Record, haps []int8, probs []float64) error {
	b := tw.buf[:0]
	b = append(b, rec.Chrom...)
	b = append(b, '\t')
	b = strconv.AppendInt(b, rec.Pos, 10)
	b = append(b, '\t')
	b = append(b, rec.ID...)
	b = append(b, '\t')
	b = append(b, rec.Ref...)
	b = append(b, '\t')
	b = append(b, rec.Alt...)

	nSamples := len(tw.columns) - 5
	for i := 0; i < nSamples; i++ {
		b = append(b, '\t')
		if tw.mode&ModeGenotypes != 0 {
			b = appendAllele(b, haps[2*i])
			b = append(b, '|')
			b = appendAllele(b, haps[2*i+1])
		}
		if tw.mode == ModeBoth {
			b = append(b, ':')
		}
		if tw.mode&ModeProbabilities != 0 {
			for j := 0; j < 3; j++ {
				if j > 0 {
					b = append(b, ',')
				}
				b = strconv.AppendFloat(b, probs[3*i+j], 'g', 4, 64)
			}
		}
	}
	b = append(b, '\n')
	tw.buf = b

	_, err := tw.w.Write(b)
	return err
}

// Flush flushes any buffered data.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func appendAllele(b []byte, h int8) []byte {
	if h == vcf.Missing {
		return append(b, '.')
	}
	return strconv.AppendInt(b, int64(h), 10)
}
