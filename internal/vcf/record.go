// Package vcf provides streaming VCF parsing with per-sample genotype and
// genotype-likelihood decoding.
package vcf

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxAlleleLen is the longest REF/ALT text stored on a Record.
// Longer alleles are truncated with a warning.
const DefaultMaxAlleleLen = 1024

// Record represents a single VCF data line.
type Record struct {
	Line    int    // 1-based line number in the input
	Chrom   string // Chromosome name (e.g., "12", "chr12")
	Pos     int64  // 1-based genomic position
	ID      string // Variant identifier (e.g., rs ID)
	Ref     string // Reference allele, possibly truncated
	Alt     string // Alternate allele(s), possibly truncated
	RefLen  int    // Untruncated length of the reference allele
	AltLen  int    // Untruncated length of the alternate allele
	Qual    string
	Filter  string
	Info    string
	Format  string // FORMAT descriptor, e.g. "GT:GL"
	Samples string // Untokenized sample columns
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (r *Record) IsSNV() bool {
	return r.RefLen == 1 && r.AltLen == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (r *Record) IsIndel() bool {
	return r.RefLen != r.AltLen
}

// IsInsertion returns true if the variant is an insertion.
func (r *Record) IsInsertion() bool {
	return r.AltLen > r.RefLen
}

// IsDeletion returns true if the variant is a deletion.
func (r *Record) IsDeletion() bool {
	return r.RefLen > r.AltLen
}

// IsBiallelic returns true if ALT lists a single allele.
func (r *Record) IsBiallelic() bool {
	return !strings.Contains(r.Alt, ",")
}

// AltAlleles returns the comma-separated ALT alleles.
func (r *Record) AltAlleles() []string {
	return strings.Split(r.Alt, ",")
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (r *Record) NormalizeChrom() string {
	if len(r.Chrom) > 3 && r.Chrom[:3] == "chr" {
		return r.Chrom[3:]
	}
	return r.Chrom
}

// ParseRecord splits a data line into the nine fixed columns and the
// remaining sample text. maxAlleleLen <= 0 disables truncation.
func ParseRecord(line string, lineNumber, maxAlleleLen int, logger *zap.Logger) (*Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var fields [NumFixedColumns]string
	rest := line
	for i := range fields {
		tok, next, ok := nextToken(rest)
		if !ok {
			return nil, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("expected at least %d tokens per line, found %d", NumFixedColumns, i),
				Err:     ErrTooFewFields,
			}
		}
		fields[i] = tok
		rest = next
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
			Err:     ErrBadPosition,
		}
	}

	r := &Record{
		Line:    lineNumber,
		Chrom:   fields[0],
		Pos:     pos,
		ID:      fields[2],
		RefLen:  len(fields[3]),
		AltLen:  len(fields[4]),
		Qual:    fields[5],
		Filter:  fields[6],
		Info:    fields[7],
		Format:  fields[8],
		Samples: strings.TrimLeft(rest, " \t"),
	}
	r.Ref = truncateAllele(fields[3], maxAlleleLen, lineNumber, logger)
	r.Alt = truncateAllele(fields[4], maxAlleleLen, lineNumber, logger)

	return r, nil
}

func truncateAllele(allele string, maxLen, lineNumber int, logger *zap.Logger) string {
	if maxLen <= 0 || len(allele) <= maxLen {
		return allele
	}
	logger.Warn(fmt.Sprintf("truncating long allele (%d bp) to %d bp", len(allele), maxLen),
		zap.Int("line", lineNumber))
	return allele[:maxLen]
}

// nextToken returns the first run of non-separator bytes in s and the text
// following it. ok is false if s holds only separators.
func nextToken(s string) (tok, rest string, ok bool) {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	if start == len(s) {
		return "", "", false
	}
	end := start
	for end < len(s) && s[end] != ' ' && s[end] != '\t' {
		end++
	}
	return s[start:end], s[end:], true
}
