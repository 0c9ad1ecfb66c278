package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vcfgeno/internal/vcf"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vcfgeno configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vcfgeno.yaml.",
		Example: `  vcfgeno config                              # show all config
  vcfgeno config set likelihood_field PL      # read PL instead of GL
  vcfgeno config set max_allele_len 4096      # keep longer alleles
  vcfgeno config get workers                  # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

// configKeys lists the settings vcfgeno reads, in display order.
var configKeys = []struct {
	name  string
	usage string
}{
	{"likelihood_field", "FORMAT field holding genotype likelihoods: GL or PL"},
	{"max_allele_len", "truncate REF/ALT alleles longer than this (negative disables)"},
	{"workers", "decoder workers (0 = number of CPUs)"},
	{"progress", "show a progress spinner on stderr"},
	{"verbose", "log debug messages"},
	{"db", "DuckDB database written by load"},
}

func isConfigKey(key string) bool {
	for _, k := range configKeys {
		if k.name == key {
			return true
		}
	}
	return false
}

func configKeyNames() string {
	names := make([]string, len(configKeys))
	for i, k := range configKeys {
		names[i] = k.name
	}
	return strings.Join(names, ", ")
}

func runConfigShow(w io.Writer) error {
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(w, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(w, "# No config file yet. Config file: ~/.vcfgeno.yaml")
	}

	settings := make(map[string]any, len(configKeys))
	for _, k := range configKeys {
		if v := viper.Get(k.name); v != nil {
			settings[k.name] = v
		}
	}
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))

	fmt.Fprintln(w, "#")
	fmt.Fprintln(w, "# Keys:")
	for _, k := range configKeys {
		fmt.Fprintf(w, "#   %-17s %s\n", k.name, k.usage)
	}
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	if !isConfigKey(key) {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, configKeyNames())
	}
	if key == "likelihood_field" {
		if err := vcf.NewDecoder().SetLikelihoodLabel(value); err != nil {
			return err
		}
	}

	// Parse boolean-like and integer values
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		if n, err := strconv.Atoi(value); err == nil {
			viper.Set(key, n)
		} else {
			viper.Set(key, value)
		}
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
