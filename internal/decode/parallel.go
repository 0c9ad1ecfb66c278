// Package decode runs the sample-column decoders over a stream of records
// on a pool of workers.
package decode

import (
	"runtime"
	"sync"

	"github.com/inodb/vcfgeno/internal/vcf"
)

// Request selects which decoders run for each record.
type Request struct {
	NumSamples  int
	Genotypes   bool
	Likelihoods bool
}

// WorkItem holds a parsed record ready for decoding.
type WorkItem struct {
	Seq    int
	Record *vcf.Record
}

// WorkResult holds the decoded sample values for a single record.
// Haps and Probs are nil unless requested.
type WorkResult struct {
	Seq    int
	Record *vcf.Record
	Haps   []int8
	Probs  []float64
	Err    error
}

// Decode runs the requested decoders for one record, allocating fresh
// output buffers.
func Decode(d *vcf.Decoder, rec *vcf.Record, req Request) WorkResult {
	res := WorkResult{Record: rec}
	if req.Likelihoods {
		res.Probs = make([]float64, 3*req.NumSamples)
		if err := d.Likelihoods(rec.Format, rec.Samples, req.NumSamples, res.Probs); err != nil {
			res.Err = &vcf.ParseError{Line: rec.Line, Message: err.Error(), Err: err}
			return res
		}
	}
	if req.Genotypes {
		res.Haps = make([]int8, 2*req.NumSamples)
		if err := d.Genotypes(rec.Format, rec.Samples, req.NumSamples, res.Haps); err != nil {
			res.Err = &vcf.ParseError{Line: rec.Line, Message: err.Error(), Err: err}
		}
	}
	return res
}

// Parallel decodes work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func Parallel(d *vcf.Decoder, items <-chan WorkItem, workers int, req Request) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for item := range items {
				res := Decode(d, item.Record, req)
				res.Seq = item.Seq
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
