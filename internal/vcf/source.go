package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// maxLineSize bounds a single VCF line. Sample-rich files easily exceed
// bufio.Scanner's 64 KiB default.
const maxLineSize = 256 << 20

// LineSource supplies successive lines of a VCF stream without their
// trailing newline. It returns io.EOF once the stream is exhausted.
type LineSource interface {
	ReadLine() (string, error)
}

// ScannerSource is a LineSource over an io.Reader.
type ScannerSource struct {
	scanner *bufio.Scanner
}

// NewScannerSource wraps r in a line scanner.
func NewScannerSource(r io.Reader) *ScannerSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &ScannerSource{scanner: s}
}

// ReadLine returns the next line with any trailing carriage return removed.
func (s *ScannerSource) ReadLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", fmt.Errorf("read line: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimRight(s.scanner.Text(), "\r"), nil
}

// fileSource is a ScannerSource that owns the file and decompressor it reads.
type fileSource struct {
	*ScannerSource
	file *os.File
	gz   *pgzip.Reader
}

// openSource opens path for line reading. Gzip and bgzip input are detected
// by their magic bytes and decompressed with pgzip. A path of "-" reads stdin.
func openSource(path string) (*fileSource, error) {
	if path == "-" {
		return newFileSource(os.Stdin, nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	src, err := newFileSource(file, file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return src, nil
}

func newFileSource(r io.Reader, file *os.File) (*fileSource, error) {
	br := bufio.NewReader(r)

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	src := &fileSource{file: file}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		src.gz, err = pgzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		src.ScannerSource = NewScannerSource(src.gz)
	} else {
		src.ScannerSource = NewScannerSource(br)
	}
	return src, nil
}

// Close closes the decompressor and the underlying file.
func (s *fileSource) Close() error {
	if s.gz != nil {
		s.gz.Close()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
