package vcf

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// Missing marks an allele that is absent, unparseable or not biallelic.
const Missing int8 = -1

// Decoder decodes the sample columns of a record into genotype calls or
// genotype probabilities. Configure it with SetLogger and
// SetLikelihoodLabel before sharing it; after that, Genotypes and
// Likelihoods are safe for concurrent use. The only state they change is
// whether the decoder has already warned about unphased genotypes, so
// callers wanting independent warnings use independent decoders.
type Decoder struct {
	logger          *zap.Logger
	likelihoodLabel string
	warnedUnphased  atomic.Bool
}

// NewDecoder creates a decoder that reads likelihoods from the GL subfield.
func NewDecoder() *Decoder {
	return &Decoder{
		logger:          zap.NewNop(),
		likelihoodLabel: LabelGL,
	}
}

// SetLogger sets the logger for warning messages.
func (d *Decoder) SetLogger(l *zap.Logger) {
	d.logger = l
}

// SetLikelihoodLabel selects the subfield read by Likelihoods: LabelGL for
// log10 likelihoods or LabelPL for phred-scaled likelihoods.
func (d *Decoder) SetLikelihoodLabel(label string) error {
	switch label {
	case LabelGL, LabelPL:
		d.likelihoodLabel = label
		return nil
	default:
		return fmt.Errorf("unsupported likelihood field %q (want %s or %s)", label, LabelGL, LabelPL)
	}
}

// LikelihoodLabel returns the subfield read by Likelihoods.
func (d *Decoder) LikelihoodLabel() string {
	return d.likelihoodLabel
}

// Genotypes decodes the GT subfield of every sample into haps, two entries
// per sample in sample order. Allele values other than 0 and 1 set both
// alleles of the sample to Missing.
func (d *Decoder) Genotypes(format, samples string, nSamples int, haps []int8) error {
	gtIdx := FormatIndex(format, LabelGT)
	if gtIdx == NotFound {
		return fmt.Errorf("%w GT, cannot obtain haplotypes: '%s'", ErrMissingField, format)
	}

	expect := 2 * nSamples
	if len(haps) < expect {
		return fmt.Errorf("%w: need %d genotype values, have %d", ErrShortBuffer, expect, len(haps))
	}

	n := 0
	rest := samples
	for {
		tok, next, ok := nextToken(rest)
		if !ok {
			break
		}
		rest = next

		gt, ok := subfield(tok, gtIdx)
		if !ok {
			continue
		}

		hap1, hap2 := d.parseGenotype(gt)
		if !isBiallelic(hap1) || !isBiallelic(hap2) {
			// Multi-allelic sites and copy number calls are not supported.
			hap1, hap2 = Missing, Missing
		}

		if n+2 > expect {
			return fmt.Errorf("%w: more genotypes per line than expected", ErrSampleCount)
		}
		haps[n] = hap1
		haps[n+1] = hap2
		n += 2
	}

	if n != expect {
		return fmt.Errorf("%w: expected %d genotype values per line, but got %d", ErrSampleCount, expect, n)
	}
	return nil
}

// parseGenotype parses a phased or unphased diploid call.
func (d *Decoder) parseGenotype(gt string) (int8, int8) {
	if a, b, ok := parseAllelePair(gt, '|'); ok {
		return a, b
	}
	if a, b, ok := parseAllelePair(gt, '/'); ok {
		if d.warnedUnphased.CompareAndSwap(false, true) {
			d.logger.Warn("some genotypes are unphased (delimited with '/' instead of '|')",
				zap.String("genotype", gt))
		}
		return a, b
	}
	d.logger.Warn(fmt.Sprintf("could not parse genotype string '%s'", gt))
	return Missing, Missing
}

// parseAllelePair parses "a<sep>b" where a and b are integers. Values that
// do not fit an int8 are reported as 2, which callers treat as unsupported.
func parseAllelePair(s string, sep byte) (int8, int8, bool) {
	left, right, found := strings.Cut(s, string(sep))
	if !found {
		return 0, 0, false
	}
	a, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(right)
	if err != nil {
		return 0, 0, false
	}
	return clampAllele(a), clampAllele(b), true
}

func clampAllele(v int) int8 {
	if v < int(Missing) || v > 1 {
		return 2
	}
	return int8(v)
}

func isBiallelic(h int8) bool {
	return h == 0 || h == 1 || h == Missing
}
