package cif

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Write writes the structure in the order read by EQeq: cell, symmetry, then
// one loop with label, type symbol, fractional coordinates and, when every
// site has one, the charge.
func (s *Structure) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	name := s.Name
	if name == "" {
		name = "crystal"
	}
	fmt.Fprintf(bw, "data_%s\n\n", name)

	fmt.Fprintf(bw, "_cell_length_a    %.6f\n", s.Cell.A)
	fmt.Fprintf(bw, "_cell_length_b    %.6f\n", s.Cell.B)
	fmt.Fprintf(bw, "_cell_length_c    %.6f\n", s.Cell.C)
	fmt.Fprintf(bw, "_cell_angle_alpha %.6f\n", s.Cell.Alpha)
	fmt.Fprintf(bw, "_cell_angle_beta  %.6f\n", s.Cell.Beta)
	fmt.Fprintf(bw, "_cell_angle_gamma %.6f\n\n", s.Cell.Gamma)

	ops := s.Ops
	if len(ops) == 0 {
		ops = []SymOp{Identity}
	}
	if len(ops) == 1 && ops[0] == Identity {
		bw.WriteString("_symmetry_space_group_name_H-M 'P 1'\n")
		bw.WriteString("_symmetry_Int_Tables_number    1\n")
		bw.WriteString("_symmetry_cell_setting         triclinic\n\n")
	}

	bw.WriteString("loop_\n_symmetry_equiv_pos_as_xyz\n")
	for _, op := range ops {
		fmt.Fprintf(bw, "  '%s'\n", op)
	}
	bw.WriteByte('\n')

	charges := len(s.Sites) > 0
	for _, site := range s.Sites {
		if !site.HasCharge {
			charges = false
			break
		}
	}

	bw.WriteString("loop_\n_atom_site_label\n_atom_site_type_symbol\n")
	bw.WriteString("_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\n")
	if charges {
		bw.WriteString("_atom_site_charge\n")
	}

	for _, site := range s.Sites {
		fmt.Fprintf(bw, "%-8s %-3s %10.6f %10.6f %10.6f", quote(site.Label), site.Symbol,
			site.Fract[0], site.Fract[1], site.Fract[2])
		if charges {
			fmt.Fprintf(bw, " %10.6f", site.Charge)
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// quote protects values that would not read back as a single value.
func quote(v string) string {
	if v == "" || strings.ContainsAny(v, " \t'") || strings.ContainsAny(v[:1], "_#$\";[]") ||
		classify(v) != tokValue || unknown(v) {
		return `"` + v + `"`
	}
	return v
}
