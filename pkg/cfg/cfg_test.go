package cfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kpotier/goeqeq/pkg/cif"
	"github.com/kpotier/goeqeq/pkg/eqeq"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const cubic = `data_cubic
_cell_length_a    10.0
_cell_length_b    10.0
_cell_length_c    10.0
_cell_angle_alpha 90
_cell_angle_beta  90
_cell_angle_gamma 90
loop_
_symmetry_equiv_pos_as_xyz
'x, y, z'
'-x, -y, -z'
loop_
_atom_site_label
_atom_site_fract_x
_atom_site_fract_y
_atom_site_fract_z
Na1 0.1 0.1 0.1
Cl1 0.3 0.3 0.3
`

// TestHelperProcess stands for the EQeq engine in TestStartCharges.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) != 12 {
		fmt.Fprintf(os.Stderr, "unexpected arguments %q\n", args)
		os.Exit(2)
	}

	s, err := cif.ParseFile(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	charges := make([]string, len(s.Sites))
	for k := range charges {
		charges[k] = "0"
	}
	fmt.Print("[" + strings.Join(charges, ", ") + "]")
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewTOML(t *testing.T) {
	path := write(t, t.TempDir(), "batch.toml", `threads = 2
types = [["standardize", "charges"], ["charges"]]
files = [["s.toml", "a.toml"], ["b.toml"]]
`)

	c, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, Cfg{
		Types:   [][]string{{"standardize", "charges"}, {"charges"}},
		Files:   [][]string{{"s.toml", "a.toml"}, {"b.toml"}},
		Threads: 2,
	}, c)
}

func TestNewYAML(t *testing.T) {
	path := write(t, t.TempDir(), "batch.yml", `types:
  - [charges, charges]
files:
  - [a.toml, b.toml]
`)

	c, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"charges", "charges"}}, c.Types)
	assert.Equal(t, [][]string{{"a.toml", "b.toml"}}, c.Files)
	assert.Equal(t, runtime.NumCPU(), c.Threads)
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"steps.toml":    "types = [[\"charges\"]]\nfiles = []\n",
		"routines.toml": "types = [[\"charges\", \"charges\"]]\nfiles = [[\"a.toml\"]]\n",
		"invalid.toml":  "types = [[\"charges\"]\n",
		"invalid.yaml":  "types: [charges\n",
		"empty.toml":    "threads = 2\n",
		"jobs.toml":     "jobs = [[\"a.toml\"]]\n",
		"empty.yaml":    "files: []\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(write(t, dir, name, content))
			assert.Error(t, err)
		})
	}
}

func TestLaunchUnknown(t *testing.T) {
	err := Launch(context.Background(), "volume", "x.toml", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calculation `volume` doesn't exist")
}

func TestStartStandardize(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "in.cif", cubic)

	var files []string
	for k := 0; k < 4; k++ {
		out := filepath.Join(dir, fmt.Sprintf("out%d.cif", k))
		files = append(files, write(t, dir, fmt.Sprintf("job%d.toml", k),
			fmt.Sprintf("[standardize]\nfile_in = %q\nfile_out = %q\n", in, out)))
	}

	c := Cfg{
		Types:   [][]string{{"standardize", "standardize", "standardize"}, {}, {"standardize"}},
		Files:   [][]string{files[:3], {}, files[3:]},
		Threads: 2,
	}

	core, logs := observer.New(zap.InfoLevel)
	failed := c.Start(context.Background(), zap.New(core))
	assert.Zero(t, failed)
	assert.Equal(t, 4, logs.FilterMessage("Structure standardized").Len())

	for k := 0; k < 4; k++ {
		s, err := cif.ParseFile(filepath.Join(dir, fmt.Sprintf("out%d.cif", k)))
		require.NoError(t, err)
		assert.Len(t, s.Sites, 4)
	}
}

func TestStartKeepsGoing(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "in.cif", cubic)
	good := write(t, dir, "good.toml",
		fmt.Sprintf("[standardize]\nfile_in = %q\nfile_out = %q\n", in, filepath.Join(dir, "out.cif")))
	bad := write(t, dir, "bad.toml", "[standardize]\nfile_in = \"missing.cif\"\nfile_out = \"x.cif\"\n")

	c := Cfg{
		Types: [][]string{{"standardize", "unknown"}, {"standardize"}},
		Files: [][]string{{bad, good}, {good}},
	}

	core, logs := observer.New(zap.InfoLevel)
	failed := c.Start(context.Background(), zap.New(core))
	assert.Equal(t, 2, failed)
	assert.Equal(t, 2, logs.FilterMessage("Calculation failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Structure standardized").Len())
	assert.FileExists(t, filepath.Join(dir, "out.cif"))
}

func TestStartCharges(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")

	dir := t.TempDir()
	in := write(t, dir, "in.cif", cubic)
	out := filepath.Join(dir, "charges.json")
	report := filepath.Join(dir, "charges.txt")
	job := write(t, dir, "job.toml", fmt.Sprintf(`[charges]
file_in = %q
file_out = %q
file_report = %q
engine = %q
engine_args = ["-test.run=TestHelperProcess", "--"]
`, in, out, report, os.Args[0]))

	c := Cfg{Types: [][]string{{"charges"}}, Files: [][]string{{job}}, Threads: 1}

	core, logs := observer.New(zap.InfoLevel)
	require.Zero(t, c.Start(context.Background(), zap.New(core)))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	charges, err := eqeq.Decode(string(b))
	require.NoError(t, err)
	assert.Len(t, charges, 4)

	entries := logs.FilterMessage("Charges computed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 4, entries[0].ContextMap()["atoms"])

	r, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(r), "0 Na1 0\n")
}

func TestNewNoStep(t *testing.T) {
	path := write(t, t.TempDir(), "batch.toml", "jobs = [[\"a.toml\"]]\n")

	_, err := New(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no calculation")
}

func TestStartCanceled(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "in.cif", cubic)
	out := filepath.Join(dir, "out.cif")
	job := write(t, dir, "job.toml",
		fmt.Sprintf("[standardize]\nfile_in = %q\nfile_out = %q\n", in, out))

	c := Cfg{
		Types:   [][]string{{"standardize", "standardize"}, {"standardize"}},
		Files:   [][]string{{job, job}, {job}},
		Threads: 1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	core, logs := observer.New(zap.InfoLevel)
	failed := c.Start(ctx, zap.New(core))
	assert.Equal(t, 3, failed)
	assert.Equal(t, 1, logs.FilterMessage("Batch canceled").Len())
	assert.Zero(t, logs.FilterMessage("Structure standardized").Len())
	assert.NoFileExists(t, out)
}
