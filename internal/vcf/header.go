package vcf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// FixedColumns are the nine leading columns of the #CHROM header line.
var FixedColumns = [...]string{
	"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT",
}

// NumFixedColumns is the number of fixed columns preceding the samples.
const NumFixedColumns = len(FixedColumns)

// Header holds what the parser keeps from the VCF header.
type Header struct {
	MetaLines   []string // "##" lines, verbatim
	ColumnLine  string   // the #CHROM line
	SampleNames []string // columns after FORMAT
}

// NumMetaLines returns the number of "##" metadata lines.
func (h *Header) NumMetaLines() int {
	return len(h.MetaLines)
}

// NumLines returns the number of header lines including the #CHROM line.
func (h *Header) NumLines() int {
	return len(h.MetaLines) + 1
}

// NumSamples returns the number of sample columns.
func (h *Header) NumSamples() int {
	return len(h.SampleNames)
}

// ReadHeader consumes header lines from src up to and including the #CHROM
// line. Mismatched fixed column names are logged and tolerated; any line
// that is neither "##" metadata nor #CHROM is an error.
func ReadHeader(src LineSource, logger *zap.Logger) (*Header, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Header{}
	lineNumber := 0
	for {
		line, err := src.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &ParseError{
					Line:    lineNumber,
					Message: "could not read header information from file",
					Err:     ErrNoHeader,
				}
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		lineNumber++

		if strings.HasPrefix(line, "##") {
			h.MetaLines = append(h.MetaLines, line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			if err := h.parseColumnLine(line, lineNumber, logger); err != nil {
				return nil, err
			}
			return h, nil
		}

		return nil, &ParseError{
			Line:    lineNumber,
			Message: "expected last line in header to start with #CHROM",
			Err:     ErrBadHeaderLine,
		}
	}
}

func (h *Header) parseColumnLine(line string, lineNumber int, logger *zap.Logger) error {
	tokens := strings.FieldsFunc(line, isFieldSep)
	if len(tokens) < NumFixedColumns {
		return &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("expected at least %d header columns, found %d", NumFixedColumns, len(tokens)),
			Err:     ErrTooFewFields,
		}
	}

	for i, want := range FixedColumns {
		if tokens[i] != want {
			logger.Warn(fmt.Sprintf("expected token %d to be %s but got '%s'", i, want, tokens[i]),
				zap.Int("line", lineNumber))
		}
	}

	h.ColumnLine = line
	h.SampleNames = tokens[NumFixedColumns:]
	return nil
}

// isFieldSep reports whether r separates VCF columns.
func isFieldSep(r rune) bool {
	return r == '\t' || r == ' '
}
