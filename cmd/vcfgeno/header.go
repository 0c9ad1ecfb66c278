package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHeaderCmd(a *app) *cobra.Command {
	var showSamples bool

	cmd := &cobra.Command{
		Use:   "header <vcf>",
		Short: "Show header line and sample counts of a VCF file",
		Example: `  vcfgeno header input.vcf.gz
  vcfgeno header --samples input.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openParser(args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			h := p.Header()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "header_lines\t%d\n", h.NumLines())
			fmt.Fprintf(out, "meta_lines\t%d\n", h.NumMetaLines())
			fmt.Fprintf(out, "samples\t%d\n", h.NumSamples())
			if showSamples {
				for _, name := range h.SampleNames {
					fmt.Fprintln(out, name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showSamples, "samples", "s", false, "Also list sample names")
	return cmd
}
