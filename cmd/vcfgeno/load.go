package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vcfgeno/internal/decode"
	"github.com/inodb/vcfgeno/internal/duckdb"
)

const defaultBatchSize = 1000

func newLoadCmd(a *app) *cobra.Command {
	var (
		flags     decodeFlags
		force     bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "load --db <file.duckdb> <vcf>",
		Short: "Load decoded genotypes and/or probabilities into a DuckDB database",
		Long: `Decode every record of a VCF file and store variants, samples, genotype
calls and genotype probabilities in DuckDB tables. A database holds one
VCF at a time; loading replaces previous contents. Loading is skipped
when the database already holds the same unchanged file, unless --force
is given.`,
		Example: `  vcfgeno load --db calls.duckdb input.vcf.gz
  vcfgeno load --db calls.duckdb --genotypes --probs input.vcf.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := viper.GetString("db")
			if dbPath == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("cannot determine home directory: %w", err)
				}
				dbPath = filepath.Join(home, ".vcfgeno", "genotypes.duckdb")
			}

			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var fp duckdb.FileFingerprint
			fromFile := args[0] != "-"
			if fromFile {
				if fp, err = duckdb.StatFile(args[0]); err != nil {
					return fmt.Errorf("stat input: %w", err)
				}
				fp.Path, _ = filepath.Abs(fp.Path)
				loaded, err := store.Loaded(fp)
				if err != nil {
					return err
				}
				if loaded && !force {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is already loaded in %s (use --force to reload)\n", args[0], dbPath)
					return nil
				}
			}

			p, err := a.openParser(args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			if err := store.Clear(); err != nil {
				return err
			}
			complete := false
			defer func() {
				if complete {
					return
				}
				// A failed load leaves an empty database, never a partial one.
				if err := store.Clear(); err != nil {
					a.logger.Warn("could not clear partial load", zap.String("db", dbPath), zap.Error(err))
				}
			}()
			if err := store.WriteSamples(p.Header().SampleNames); err != nil {
				return err
			}

			req := flags.request(p.NumSamples())
			bar := newProgress(viper.GetBool("progress"), "loading")
			var (
				batch []duckdb.Row
				count int64
			)
			err = decode.Run(p, p.Decoder(), viper.GetInt("workers"), req, func(r decode.WorkResult) error {
				batch = append(batch, duckdb.Row{
					Seq:    int64(r.Seq),
					Record: r.Record,
					Haps:   r.Haps,
					Probs:  r.Probs,
				})
				count++
				bar.increment()
				if len(batch) >= batchSize {
					if err := store.WriteBatch(batch); err != nil {
						return err
					}
					batch = batch[:0]
				}
				return nil
			})
			bar.finish()
			if err != nil {
				return err
			}
			if err := store.WriteBatch(batch); err != nil {
				return err
			}

			if fromFile {
				if err := store.RecordSource(fp, p.NumSamples(), count); err != nil {
					return err
				}
			}

			complete = true

			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d variants x %d samples into %s\n", count, p.NumSamples(), dbPath)
			a.logger.Debug("load complete", zap.Int64("variants", count), zap.String("db", dbPath))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().String("db", "", "DuckDB database file (default: ~/.vcfgeno/genotypes.duckdb)")
	cmd.Flags().BoolVar(&force, "force", false, "Reload even if the file is already loaded")
	cmd.Flags().IntVar(&batchSize, "batch-size", defaultBatchSize, "Records per DuckDB append batch")
	_ = viper.BindPFlag("db", cmd.Flags().Lookup("db"))

	return cmd
}
