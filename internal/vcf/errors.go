package vcf

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal conditions of header, record and sample
// decoding. A *ParseError wraps one of these when the failure is tied to an
// input line.
var (
	ErrNoHeader      = errors.New("no #CHROM header line found")
	ErrBadHeaderLine = errors.New("expected last line in header to start with #CHROM")
	ErrTooFewFields  = errors.New("fewer fields than expected")
	ErrBadPosition   = errors.New("invalid position")
	ErrMissingField  = errors.New("format does not specify field")
	ErrBadLikelihood = errors.New("failed to parse genotype likelihoods")
	ErrSampleCount   = errors.New("unexpected number of sample values")
	ErrShortBuffer   = errors.New("output buffer too small")
)

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
