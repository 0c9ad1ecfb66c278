package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vcfgeno/internal/decode"
	"github.com/inodb/vcfgeno/internal/output"
)

// decodeFlags selects the decoders requested on the command line.
type decodeFlags struct {
	genotypes bool
	probs     bool
}

func (f *decodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.genotypes, "genotypes", "g", false, "Decode GT genotype calls")
	cmd.Flags().BoolVarP(&f.probs, "probs", "p", false, "Decode genotype probabilities from likelihoods")
}

// request returns the decode request; genotypes are the default.
func (f *decodeFlags) request(nSamples int) decode.Request {
	req := decode.Request{NumSamples: nSamples, Genotypes: f.genotypes, Likelihoods: f.probs}
	if !req.Genotypes && !req.Likelihoods {
		req.Genotypes = true
	}
	return req
}

func modeFor(req decode.Request) output.Mode {
	var m output.Mode
	if req.Genotypes {
		m |= output.ModeGenotypes
	}
	if req.Likelihoods {
		m |= output.ModeProbabilities
	}
	return m
}

func newExportCmd(a *app) *cobra.Command {
	var (
		flags      decodeFlags
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "export [options] <vcf>",
		Short: "Write decoded genotypes and/or probabilities as a tab-delimited table",
		Long: `Decode every record of a VCF file and write one row per variant with
one column per sample. Genotype cells are written as a|b (missing
alleles as '.'), probability cells as P(hom-ref),P(het),P(hom-alt).
Use '-' to read from stdin. Output paths ending in .gz are compressed.`,
		Example: `  vcfgeno export input.vcf.gz
  vcfgeno export --genotypes --probs -o calls.tsv.gz input.vcf.gz
  vcfgeno export --probs --likelihood-field PL input.vcf
  zcat input.vcf.gz | vcfgeno export -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openParser(args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			req := flags.request(p.NumSamples())

			out := &output.File{Writer: cmd.OutOrStdout()}
			if outputFile != "" {
				if out, err = output.Create(outputFile); err != nil {
					return err
				}
			}
			defer out.Close()

			w := output.NewTabWriter(out, modeFor(req), p.Header().SampleNames)
			if err := w.WriteHeader(); err != nil {
				return fmt.Errorf("write header: %w", err)
			}

			bar := newProgress(viper.GetBool("progress"), "exporting")
			count := 0
			err = decode.Run(p, p.Decoder(), viper.GetInt("workers"), req, func(r decode.WorkResult) error {
				if err := w.Write(r.Record, r.Haps, r.Probs); err != nil {
					return fmt.Errorf("write record: %w", err)
				}
				count++
				bar.increment()
				return nil
			})
			bar.finish()
			if err != nil {
				return err
			}

			if err := w.Flush(); err != nil {
				return fmt.Errorf("flush output: %w", err)
			}
			if err := out.Close(); err != nil {
				return err
			}

			a.logger.Info("export complete", zap.Int("variants", count), zap.String("mode", modeFor(req).String()))
			if count == 0 {
				a.logger.Warn("0 variants processed")
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
