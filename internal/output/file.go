package output

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/klauspost/pgzip"
)

// File is an output destination. Paths ending in ".gz" are gzip-compressed.
type File struct {
	io.Writer
	file *os.File
	gz   *pgzip.Writer
}

// Create opens path for writing. An empty path or "-" writes to stdout.
func Create(path string) (*File, error) {
	if path == "" || path == "-" {
		return &File{Writer: os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return &File{Writer: f, file: f}, nil
	}

	pw, err := pgzip.NewWriterLevel(f, pgzip.DefaultCompression)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	if err := pw.SetConcurrency(1<<20, runtime.GOMAXPROCS(0)); err != nil {
		_ = pw.Close()
		_ = f.Close()
		return nil, fmt.Errorf("set gzip concurrency: %w", err)
	}
	return &File{Writer: pw, file: f, gz: pw}, nil
}

// Close flushes the compressor, if any, and closes the file. Stdout is left
// open. Closing twice is a no-op.
func (f *File) Close() error {
	gz, file := f.gz, f.file
	f.gz, f.file = nil, nil

	if gz != nil {
		if err := gz.Close(); err != nil {
			_ = file.Close()
			return fmt.Errorf("close gzip writer: %w", err)
		}
	}
	if file != nil {
		return file.Close()
	}
	return nil
}
