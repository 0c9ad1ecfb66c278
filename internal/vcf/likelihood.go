package vcf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FORMAT labels understood by the decoders.
const (
	LabelGT = "GT"
	LabelGL = "GL"
	LabelPL = "PL"
)

// MissingLogLikelihood is the log10 likelihood assigned to each genotype
// class when the likelihood subfield is ".", approximately log10(1/3).
const MissingLogLikelihood = -0.477

// Likelihoods decodes the likelihood subfield of every sample into probs,
// three entries per sample: P(hom-ref), P(het), P(hom-alt). Each triple is
// normalized to sum to 1.
func (d *Decoder) Likelihoods(format, samples string, nSamples int, probs []float64) error {
	label := d.likelihoodLabel
	glIdx := FormatIndex(format, label)
	if glIdx == NotFound {
		return fmt.Errorf("%w %s, cannot obtain genotype probabilities: '%s'", ErrMissingField, label, format)
	}

	expect := 3 * nSamples
	if len(probs) < expect {
		return fmt.Errorf("%w: need %d genotype probabilities, have %d", ErrShortBuffer, expect, len(probs))
	}

	n := 0
	rest := samples
	for {
		tok, next, ok := nextToken(rest)
		if !ok {
			break
		}
		rest = next

		gl, ok := subfield(tok, glIdx)
		if !ok {
			continue
		}

		like, err := parseLikelihoods(gl, label)
		if err != nil {
			return err
		}

		if n+3 > expect {
			return fmt.Errorf("%w: more genotype likelihoods per line than expected", ErrSampleCount)
		}
		d.normalize(like, probs[n:n+3])
		n += 3
	}

	if n != expect {
		return fmt.Errorf("%w: expected %d genotype likelihoods per line, but got %d", ErrSampleCount, expect, n)
	}
	return nil
}

// parseLikelihoods returns log10 likelihoods for the three genotype classes.
func parseLikelihoods(s, label string) ([3]float64, error) {
	var like [3]float64
	if s == "." {
		return [3]float64{MissingLogLikelihood, MissingLogLikelihood, MissingLogLikelihood}, nil
	}

	// Multiallelic sites carry more than three values; only the first three
	// (hom-ref, het, hom-alt for the first ALT) are used.
	parts := strings.SplitN(s, ",", 4)
	if len(parts) < 3 {
		return like, fmt.Errorf("%w from string '%s'", ErrBadLikelihood, s)
	}
	for i, p := range parts[:3] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(v) {
			return like, fmt.Errorf("%w from string '%s'", ErrBadLikelihood, s)
		}
		if label == LabelPL {
			v /= -10
		}
		like[i] = v
	}
	return like, nil
}

// normalize converts log10 likelihoods to probabilities summing to 1. The
// largest likelihood is factored out first so tiny values do not underflow.
func (d *Decoder) normalize(like [3]float64, out []float64) {
	maxLike := math.Max(like[0], math.Max(like[1], like[2]))
	if math.IsInf(maxLike, 0) {
		if math.IsInf(maxLike, -1) {
			d.logger.Warn("all genotype likelihoods are zero, using uniform probabilities")
		} else {
			d.logger.Warn("infinite genotype likelihood, using uniform probabilities")
		}
		out[0], out[1], out[2] = 1.0/3, 1.0/3, 1.0/3
		return
	}

	var sum float64
	for i, l := range like {
		out[i] = math.Pow(10, l-maxLike)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
}
