package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vcfgeno/internal/vcf"
)

// Row holds one decoded record ready to be written. Haps and Probs may be
// nil when the corresponding decoder was not run.
type Row struct {
	Seq    int64
	Record *vcf.Record
	Haps   []int8
	Probs  []float64
}

// SampleGenotype is a stored genotype call for one sample at one variant.
type SampleGenotype struct {
	Sample string
	Hap1   int8
	Hap2   int8
}

// SampleProbs is a stored genotype probability triple for one sample.
type SampleProbs struct {
	Sample string
	HomRef float64
	Het    float64
	HomAlt float64
}

// WriteSamples replaces the stored sample names.
func (s *Store) WriteSamples(names []string) error {
	if _, err := s.db.Exec("DELETE FROM samples"); err != nil {
		return fmt.Errorf("clear samples: %w", err)
	}
	for i, name := range names {
		if _, err := s.db.Exec("INSERT INTO samples VALUES (?, ?)", int32(i), name); err != nil {
			return fmt.Errorf("insert sample %s: %w", name, err)
		}
	}
	return nil
}

// WriteBatch batch-inserts decoded records using the Appender API.
func (s *Store) WriteBatch(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var variants, genotypes, probs *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		dc := driverConn.(driver.Conn)
		var err error
		if variants, err = goduckdb.NewAppenderFromConn(dc, "", "variants"); err != nil {
			return err
		}
		if genotypes, err = goduckdb.NewAppenderFromConn(dc, "", "genotypes"); err != nil {
			variants.Close()
			return err
		}
		if probs, err = goduckdb.NewAppenderFromConn(dc, "", "genotype_probs"); err != nil {
			variants.Close()
			genotypes.Close()
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer probs.Close()
	defer genotypes.Close()
	defer variants.Close()

	for _, row := range rows {
		r := row.Record
		if err := variants.AppendRow(
			row.Seq, r.Chrom, r.Pos, r.ID, r.Ref, r.Alt,
			int32(r.RefLen), int32(r.AltLen), r.Qual, r.Filter, r.Format,
		); err != nil {
			return fmt.Errorf("append variant: %w", err)
		}

		for i := 0; i+1 < len(row.Haps); i += 2 {
			if err := genotypes.AppendRow(row.Seq, int32(i/2), int32(row.Haps[i]), int32(row.Haps[i+1])); err != nil {
				return fmt.Errorf("append genotype: %w", err)
			}
		}

		for i := 0; i+2 < len(row.Probs); i += 3 {
			if err := probs.AppendRow(row.Seq, int32(i/3), row.Probs[i], row.Probs[i+1], row.Probs[i+2]); err != nil {
				return fmt.Errorf("append genotype probabilities: %w", err)
			}
		}
	}

	if err := variants.Flush(); err != nil {
		return fmt.Errorf("flush variants: %w", err)
	}
	if err := genotypes.Flush(); err != nil {
		return fmt.Errorf("flush genotypes: %w", err)
	}
	return probs.Flush()
}

// VariantCount returns the number of stored variants.
func (s *Store) VariantCount() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM variants").Scan(&n); err != nil {
		return 0, fmt.Errorf("count variants: %w", err)
	}
	return n, nil
}

// LookupGenotypes returns the stored genotype calls of every sample at
// chrom:pos, in sample order.
func (s *Store) LookupGenotypes(chrom string, pos int64) ([]SampleGenotype, error) {
	rows, err := s.db.Query(`SELECT s.name, g.hap1, g.hap2
		FROM variants v
		JOIN genotypes g ON g.seq = v.seq
		JOIN samples s ON s.idx = g.sample
		WHERE v.chrom=? AND v.pos=?
		ORDER BY v.seq, g.sample`, chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query genotypes: %w", err)
	}
	defer rows.Close()

	var out []SampleGenotype
	for rows.Next() {
		var g SampleGenotype
		var hap1, hap2 int32
		if err := rows.Scan(&g.Sample, &hap1, &hap2); err != nil {
			return nil, fmt.Errorf("scan genotype: %w", err)
		}
		g.Hap1, g.Hap2 = int8(hap1), int8(hap2)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genotypes: %w", err)
	}
	return out, nil
}

// LookupProbabilities returns the stored genotype probabilities of every
// sample at chrom:pos, in sample order.
func (s *Store) LookupProbabilities(chrom string, pos int64) ([]SampleProbs, error) {
	rows, err := s.db.Query(`SELECT s.name, p.p_hom_ref, p.p_het, p.p_hom_alt
		FROM variants v
		JOIN genotype_probs p ON p.seq = v.seq
		JOIN samples s ON s.idx = p.sample
		WHERE v.chrom=? AND v.pos=?
		ORDER BY v.seq, p.sample`, chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query genotype probabilities: %w", err)
	}
	defer rows.Close()

	var out []SampleProbs
	for rows.Next() {
		var p SampleProbs
		if err := rows.Scan(&p.Sample, &p.HomRef, &p.Het, &p.HomAlt); err != nil {
			return nil, fmt.Errorf("scan genotype probabilities: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genotype probabilities: %w", err)
	}
	return out, nil
}

// AlleleFrequency returns the alternate allele frequency at chrom:pos over
// non-missing haplotypes, and the number of haplotypes it was computed from.
func (s *Store) AlleleFrequency(chrom string, pos int64) (float64, int64, error) {
	var alt, called int64
	err := s.db.QueryRow(`SELECT
		COALESCE(SUM((hap1 = 1)::INTEGER + (hap2 = 1)::INTEGER), 0)::BIGINT,
		COALESCE(SUM((hap1 >= 0)::INTEGER + (hap2 >= 0)::INTEGER), 0)::BIGINT
		FROM genotypes g JOIN variants v ON g.seq = v.seq
		WHERE v.chrom=? AND v.pos=?`, chrom, pos).Scan(&alt, &called)
	if err != nil {
		return 0, 0, fmt.Errorf("query allele frequency: %w", err)
	}
	if called == 0 {
		return 0, 0, nil
	}
	return float64(alt) / float64(called), called, nil
}
