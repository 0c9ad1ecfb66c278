package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vcfgeno/internal/duckdb"
)

const testVCF = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1	S2
chr1	100	rs1	A	G	50	PASS	.	GT:GL	0|1:-0.5,-0.2,-1.0	1/1:.
chr1	200	rs2	C	T	50	PASS	.	GT:GL	0|0:0,-1,-2	1|2:-1,-1,-1
`

// execute runs the root command with a clean viper state and HOME.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeVCF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.vcf")
	require.NoError(t, os.WriteFile(path, []byte(testVCF), 0644))
	return path
}

func TestHeaderCmd(t *testing.T) {
	out, err := execute(t, "header", "--samples", writeVCF(t))
	require.NoError(t, err)
	assert.Equal(t, "header_lines\t2\nmeta_lines\t1\nsamples\t2\nS1\nS2\n", out)
}

func TestExportCmd_Genotypes(t *testing.T) {
	out, err := execute(t, "export", "--workers", "2", writeVCF(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#CHROM\tPOS\tID\tREF\tALT\tS1\tS2", lines[0])
	assert.Equal(t, "chr1\t100\trs1\tA\tG\t0|1\t1|1", lines[1])
	assert.Equal(t, "chr1\t200\trs2\tC\tT\t0|0\t.|.", lines[2])
}

func TestExportCmd_BothToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.tsv")
	_, err := execute(t, "export", "-g", "-p", "-o", dest, writeVCF(t))
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "\t1|1:0.3333,0.3333,0.3333"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "chr1\t200\trs2\tC\tT\t0|0:0.9009,0.09009,0.009009"), lines[2])
}

func TestExportCmd_MissingLikelihoodField(t *testing.T) {
	_, err := execute(t, "export", "--probs", "--likelihood-field", "PL", writeVCF(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PL")
}

func TestExportCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "export", filepath.Join(t.TempDir(), "absent.vcf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check that the file path is correct")
}

func TestConfigCmd_SetGet(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	t.Setenv("HOME", home)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "set", "likelihood_field", "PL"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Set likelihood_field = PL")

	_, err := os.Stat(filepath.Join(home, ".vcfgeno.yaml"))
	require.NoError(t, err)

	viper.Reset()
	root = newRootCmd()
	out.Reset()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "get", "likelihood_field"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "PL\n", out.String())
}

func TestLoadCmd(t *testing.T) {
	in := writeVCF(t)
	db := filepath.Join(t.TempDir(), "calls.duckdb")

	out, err := execute(t, "load", "--db", db, "-g", "-p", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 variants x 2 samples")

	out, err = execute(t, "load", "--db", db, in)
	require.NoError(t, err)
	assert.Contains(t, out, "already loaded")

	out, err = execute(t, "load", "--db", db, "--force", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 variants")
}

func TestLoadCmd_FailureLeavesEmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "calls.duckdb")
	_, err := execute(t, "load", "--db", db, writeVCF(t))
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.vcf")
	truncated := testVCF + "chr1\t300\trs3\tG\tA\t50\tPASS\n"
	require.NoError(t, os.WriteFile(bad, []byte(truncated), 0644))

	_, err = execute(t, "load", "--db", db, "--batch-size", "1", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 5")

	store, err := duckdb.Open(db)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.VariantCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	var sources int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM sources").Scan(&sources))
	assert.Equal(t, 0, sources)
}

func TestConfigCmd_Show(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "# No config file yet")
	assert.Contains(t, out, "likelihood_field: GL")
	for _, key := range []string{"likelihood_field", "max_allele_len", "workers", "progress", "verbose", "db"} {
		assert.Contains(t, out, "#   "+key, key)
	}
}

func TestConfigCmd_SetRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown key", []string{"config", "set", "likelyhood_field", "PL"}, "unknown config key"},
		{"bad likelihood field", []string{"config", "set", "likelihood_field", "GP"}, "unsupported likelihood field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
