package standardize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kpotier/goeqeq/pkg/cif"
)

const centred = `data_bcc
_cell_length_a    2.87
_cell_length_b    2.87
_cell_length_c    2.87
_cell_angle_alpha 90
_cell_angle_beta  90
_cell_angle_gamma 90
loop_
_symmetry_equiv_pos_as_xyz
'x, y, z'
'x+1/2, y+1/2, z+1/2'
loop_
_atom_site_label
_atom_site_fract_x
_atom_site_fract_y
_atom_site_fract_z
Fe1 0 0 0
`

func TestNewAndStart(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bcc.cif")
	require.NoError(t, os.WriteFile(in, []byte(centred), 0644))

	job := filepath.Join(dir, "job.toml")
	require.NoError(t, os.WriteFile(job, []byte(
		"[standardize]\nfile_in = \""+in+"\"\nfile_out = \""+filepath.Join(dir, "p1.cif")+"\"\n"), 0644))

	s, err := New(job)
	require.NoError(t, err)
	assert.Equal(t, cif.DefaultTolerance, s.Tolerance)

	require.NoError(t, s.Start(context.Background(), zap.NewNop()))

	out, err := cif.ParseFile(s.FileOut)
	require.NoError(t, err)
	assert.Len(t, out.Sites, 2)
	assert.Equal(t, []cif.SymOp{cif.Identity}, out.Ops)
	assert.Equal(t, "Fe", out.Sites[1].Symbol)
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"missing": "[standardize]\nfile_in = \"a.cif\"\n",
		"same":    "[standardize]\nfile_in = \"a.cif\"\nfile_out = \"a.cif\"\n",
		"toml":    "[standardize\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := New(path)
			assert.Error(t, err)
		})
	}
}

func TestStartMalformed(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.cif")
	require.NoError(t, os.WriteFile(in, []byte("data_bad\n_cell_length_a 1\n"), 0644))

	s := &Standardize{FileIn: in, FileOut: filepath.Join(dir, "out.cif"), Tolerance: cif.DefaultTolerance}
	err := s.Start(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cif.ErrFormat))
	assert.NoFileExists(t, s.FileOut)
}
