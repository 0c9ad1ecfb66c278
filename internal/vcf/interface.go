package vcf

// RecordReader is the interface for parsers that read VCF records.
type RecordReader interface {
	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*Record, error)

	// NumSamples returns the number of sample columns per record.
	NumSamples() int

	// LineNumber returns the current line number being processed.
	LineNumber() int

	// Close closes the reader and releases resources.
	Close() error
}

var _ RecordReader = (*Parser)(nil)
