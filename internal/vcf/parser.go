package vcf

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Options configures a Parser. The zero value is usable.
type Options struct {
	// Logger receives warnings. Defaults to a no-op logger.
	Logger *zap.Logger
	// MaxAlleleLen is the longest REF/ALT text kept on a Record.
	// Zero means DefaultMaxAlleleLen; negative disables truncation.
	MaxAlleleLen int
	// Decoder decodes sample columns. Defaults to a new Decoder using Logger.
	Decoder *Decoder
}

// Parser reads records from a VCF stream. It is not safe for concurrent use.
type Parser struct {
	src          LineSource
	closer       io.Closer
	logger       *zap.Logger
	decoder      *Decoder
	header       *Header
	lineNumber   int
	maxAlleleLen int
}

// NewParser creates a new VCF parser for the given file and reads its
// header. Supports both plain VCF and gzipped VCF (.vcf.gz) files; "-"
// reads stdin.
func NewParser(path string, opts Options) (*Parser, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}

	p, err := newParser(src, src, opts)
	if err != nil {
		src.Close()
		return nil, err
	}
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
// Compressed input is detected as in NewParser.
func NewParserFromReader(r io.Reader, opts Options) (*Parser, error) {
	src, err := newFileSource(r, nil)
	if err != nil {
		return nil, err
	}

	p, err := newParser(src, src, opts)
	if err != nil {
		src.Close()
		return nil, err
	}
	return p, nil
}

// NewParserFromSource creates a parser over an existing LineSource.
func NewParserFromSource(src LineSource, opts Options) (*Parser, error) {
	return newParser(src, nil, opts)
}

func newParser(src LineSource, closer io.Closer, opts Options) (*Parser, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxAlleleLen := opts.MaxAlleleLen
	if maxAlleleLen == 0 {
		maxAlleleLen = DefaultMaxAlleleLen
	}

	decoder := opts.Decoder
	if decoder == nil {
		decoder = NewDecoder()
		decoder.SetLogger(logger)
	}

	header, err := ReadHeader(src, logger)
	if err != nil {
		return nil, err
	}

	return &Parser{
		src:          src,
		closer:       closer,
		logger:       logger,
		decoder:      decoder,
		header:       header,
		lineNumber:   header.NumLines(),
		maxAlleleLen: maxAlleleLen,
	}, nil
}

// Header returns the parsed VCF header.
func (p *Parser) Header() *Header {
	return p.header
}

// NumSamples returns the number of sample columns declared by the header.
func (p *Parser) NumSamples() int {
	return p.header.NumSamples()
}

// Decoder returns the decoder used by Genotypes and Likelihoods.
func (p *Parser) Decoder() *Decoder {
	return p.decoder
}

// Next reads the next record from the VCF stream.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.src.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		if line == "" {
			continue // Skip empty lines
		}

		return ParseRecord(line, p.lineNumber, p.maxAlleleLen, p.logger)
	}
}

// Genotypes decodes the GT subfield of rec into haps, which must hold
// 2*NumSamples() values.
func (p *Parser) Genotypes(rec *Record, haps []int8) error {
	if err := p.decoder.Genotypes(rec.Format, rec.Samples, p.NumSamples(), haps); err != nil {
		return &ParseError{Line: rec.Line, Message: err.Error(), Err: err}
	}
	return nil
}

// Likelihoods decodes the likelihood subfield of rec into probs, which must
// hold 3*NumSamples() values.
func (p *Parser) Likelihoods(rec *Record, probs []float64) error {
	if err := p.decoder.Likelihoods(rec.Format, rec.Samples, p.NumSamples(), probs); err != nil {
		return &ParseError{Line: rec.Line, Message: err.Error(), Err: err}
	}
	return nil
}

// NextWith reads the next record and decodes genotype probabilities into
// probs and genotypes into haps, skipping either when its buffer is nil.
// Returns nil, nil when there are no more records.
func (p *Parser) NextWith(haps []int8, probs []float64) (*Record, error) {
	rec, err := p.Next()
	if err != nil || rec == nil {
		return rec, err
	}
	if probs != nil {
		if err := p.Likelihoods(rec, probs); err != nil {
			return nil, err
		}
	}
	if haps != nil {
		if err := p.Genotypes(rec, haps); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}
