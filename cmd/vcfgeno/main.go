// Package main provides the vcfgeno command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vcfgeno/internal/vcf"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".vcfgeno"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// app carries state shared by subcommands once flags and config are read.
type app struct {
	cfgFile string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "vcfgeno",
		Short: "Decode genotypes and genotype probabilities from VCF files",
		Long: `vcfgeno streams a VCF file and decodes, per variant, the diploid
genotype calls (GT) and/or genotype probabilities derived from
genotype likelihoods (GL or PL) of every sample.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(a.cfgFile); err != nil {
				return err
			}
			logger, err := newLogger(viper.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/.vcfgeno.yaml)")
	pf.BoolP("verbose", "v", false, "Log debug messages")
	pf.Int("max-allele-len", vcf.DefaultMaxAlleleLen, "Truncate REF/ALT alleles longer than this (negative disables)")
	pf.String("likelihood-field", vcf.LabelGL, "FORMAT field holding genotype likelihoods: GL or PL")
	pf.Int("workers", 0, "Decoder workers (default: number of CPUs)")
	pf.Bool("progress", false, "Show a progress spinner on stderr")

	for key, flag := range map[string]string{
		"verbose":          "verbose",
		"max_allele_len":   "max-allele-len",
		"likelihood_field": "likelihood-field",
		"workers":          "workers",
		"progress":         "progress",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(newHeaderCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newLoadCmd(a))
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads ~/.vcfgeno.yaml (or cfgFile) and VCFGENO_* environment
// variables. A missing default config file is not an error.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VCFGENO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// newLogger builds a console logger on stderr. Warnings are always shown;
// verbose adds debug output.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// openParser opens a VCF with a decoder configured from flags and config.
func (a *app) openParser(path string) (*vcf.Parser, error) {
	decoder := vcf.NewDecoder()
	decoder.SetLogger(a.logger)
	if err := decoder.SetLikelihoodLabel(strings.ToUpper(viper.GetString("likelihood_field"))); err != nil {
		return nil, err
	}

	p, err := vcf.NewParser(path, vcf.Options{
		Logger:       a.logger,
		MaxAlleleLen: viper.GetInt("max_allele_len"),
		Decoder:      decoder,
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (check that the file path is correct)", err)
		}
		return nil, err
	}

	a.logger.Debug("opened VCF",
		zap.String("path", filepath.Clean(path)),
		zap.Int("samples", p.NumSamples()),
		zap.Int("header_lines", p.Header().NumLines()))
	return p, nil
}
