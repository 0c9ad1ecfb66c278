package decode

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/inodb/vcfgeno/internal/vcf"
)

// Run reads every record from r, decodes it on a pool of workers and calls
// fn for each result in input order. The first read, decode or callback
// error stops the run and is returned.
func Run(r vcf.RecordReader, d *vcf.Decoder, workers int, req Request, fn func(WorkResult) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	items := make(chan WorkItem, 2*workers)
	done := make(chan struct{})
	var readErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			rec, err := r.Next()
			if err != nil {
				readErr = fmt.Errorf("read record: %w", err)
				return
			}
			if rec == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Record: rec}:
				seq++
			case <-done:
				return
			}
		}
	}()

	results := Parallel(d, items, workers, req)

	var once sync.Once
	halt := func() { once.Do(func() { close(done) }) }

	err := OrderedCollect(results, func(res WorkResult) error {
		if res.Err != nil {
			halt()
			return res.Err
		}
		if err := fn(res); err != nil {
			halt()
			return err
		}
		return nil
	})
	halt()
	if err != nil {
		return err
	}

	// results is closed only after the reader closed items, so readErr is settled.
	return readErr
}
