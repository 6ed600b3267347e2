// Package cif reads crystal structures written in the Crystallographic
// Information File format and writes them back in the canonical form read by
// the EQeq engine: symmetry expanded to P1, one atom per row with the label,
// the element symbol and the fractional coordinates in this order.
package cif

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Cell holds the lattice parameters. Lengths are in angstrom and angles in
// degrees.
type Cell struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

// Matrix returns the lattice vectors as rows: a along x, b in the xy plane.
func (c Cell) Matrix() [3][3]float64 {
	al := c.Alpha * math.Pi / 180.
	be := c.Beta * math.Pi / 180.
	ga := c.Gamma * math.Pi / 180.

	cx := math.Cos(be)
	cy := (math.Cos(al) - math.Cos(be)*math.Cos(ga)) / math.Sin(ga)
	cz := math.Sqrt(1 - cx*cx - cy*cy)

	return [3][3]float64{
		{c.A, 0, 0},
		{c.B * math.Cos(ga), c.B * math.Sin(ga), 0},
		{c.C * cx, c.C * cy, c.C * cz},
	}
}

// Cartesian converts fractional coordinates into cartesian ones.
func (c Cell) Cartesian(f [3]float64) (xyz [3]float64) {
	m := c.Matrix()
	for k := 0; k < 3; k++ {
		for i := 0; i < 3; i++ {
			xyz[k] += f[i] * m[i][k]
		}
	}
	return
}

// Volume returns the volume of the cell in cubic angstrom.
func (c Cell) Volume() float64 {
	m := c.Matrix()
	return m[0][0] * m[1][1] * m[2][2]
}

func (c Cell) valid() error {
	if c.A <= 0 || c.B <= 0 || c.C <= 0 {
		return formatErr(0, "cell lengths must be positive (%g, %g, %g)", c.A, c.B, c.C)
	}

	for _, v := range [3]float64{c.Alpha, c.Beta, c.Gamma} {
		if v <= 0 || v >= 180 {
			return formatErr(0, "cell angle %g out of range", v)
		}
	}

	if v := c.Volume(); math.IsNaN(v) || v <= 0 {
		return formatErr(0, "degenerate cell (%g, %g, %g)", c.Alpha, c.Beta, c.Gamma)
	}

	return nil
}

// Site is one atom of the structure.
type Site struct {
	Label     string
	Symbol    string
	Fract     [3]float64
	Charge    float64
	HasCharge bool
}

// Structure is the content of the first data block of a CIF file.
type Structure struct {
	Name  string
	Cell  Cell
	Ops   []SymOp
	Sites []Site
}

var (
	cellTags = [6]string{
		"_cell_length_a", "_cell_length_b", "_cell_length_c",
		"_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma",
	}
	symOpTags = []string{
		"_symmetry_equiv_pos_as_xyz",
		"_space_group_symop_operation_xyz",
	}
	spaceGroupTags = []string{
		"_symmetry_space_group_name_h-m",
		"_space_group_name_h-m_alt",
	}
	fractTags = [3]string{
		"_atom_site_fract_x", "_atom_site_fract_y", "_atom_site_fract_z",
	}
)

// ParseFile reads the CIF file at path.
func ParseFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a CIF file. Only the first data block is used. A file without a
// symmetry loop is taken as P1.
func Parse(r io.Reader) (*Structure, error) {
	toks, err := tokenize(r)
	if err != nil {
		return nil, err
	}

	b, err := parseBlock(toks)
	if err != nil {
		return nil, err
	}

	s := Structure{Name: b.name}

	var cell [6]float64
	for k, tag := range cellTags {
		v, ok := b.items[tag]
		if !ok {
			return nil, formatErr(0, "missing %s", tag)
		}
		cell[k], err = parseNumber(v)
		if err != nil {
			return nil, formatErr(0, "%s: cannot parse %q", tag, v)
		}
	}
	s.Cell = Cell{cell[0], cell[1], cell[2], cell[3], cell[4], cell[5]}
	if err := s.Cell.valid(); err != nil {
		return nil, err
	}

	if l, col := b.loop(symOpTags...); l != nil {
		for _, row := range l.rows {
			op, err := ParseSymOp(row[col])
			if err != nil {
				return nil, err
			}
			s.Ops = append(s.Ops, op)
		}
	} else if v, ok := b.items[symOpTags[0]]; ok {
		op, err := ParseSymOp(v)
		if err != nil {
			return nil, err
		}
		s.Ops = append(s.Ops, op)
	}
	if len(s.Ops) == 0 {
		if g, ok := spaceGroup(b); ok && !isP1(g) {
			return nil, formatErr(0, "space group %q has no symmetry operators", g)
		}
		s.Ops = []SymOp{Identity}
	}

	s.Sites, err = sites(b)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// spaceGroup returns the Hermann-Mauguin symbol of the block, if known.
func spaceGroup(b *block) (string, bool) {
	for _, tag := range spaceGroupTags {
		if v, ok := b.items[tag]; ok && !unknown(v) {
			return v, true
		}
	}
	return "", false
}

func isP1(g string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(g), ""), "P1")
}

func sites(b *block) ([]Site, error) {
	l, _ := b.loop(fractTags[0])
	if l == nil {
		return nil, formatErr(0, "no _atom_site loop with fractional coordinates")
	}

	var cols [3]int
	for k, tag := range fractTags {
		cols[k] = l.column(tag)
		if cols[k] < 0 {
			return nil, formatErr(0, "missing %s", tag)
		}
	}
	label := l.column("_atom_site_label")
	symbol := l.column("_atom_site_type_symbol")
	charge := l.column("_atom_site_charge")

	if label < 0 && symbol < 0 {
		return nil, formatErr(0, "atom sites have neither a label nor a type symbol")
	}

	sites := make([]Site, 0, len(l.rows))
	for i, row := range l.rows {
		var site Site
		for k := 0; k < 3; k++ {
			v, err := parseNumber(row[cols[k]])
			if err != nil {
				return nil, formatErr(0, "site %d: %s: cannot parse %q", i, fractTags[k], row[cols[k]])
			}
			site.Fract[k] = v
		}

		if symbol >= 0 && !unknown(row[symbol]) {
			site.Symbol = element(row[symbol])
		}
		if label >= 0 {
			site.Label = row[label]
			if site.Symbol == "" {
				site.Symbol = labelElement(site.Label)
			}
		}
		if site.Symbol == "" {
			return nil, formatErr(0, "site %d: no element symbol", i)
		}
		if site.Label == "" {
			site.Label = fmt.Sprintf("%s%d", site.Symbol, i+1)
		}

		if charge >= 0 && !unknown(row[charge]) {
			v, err := parseNumber(row[charge])
			if err != nil {
				return nil, formatErr(0, "site %s: cannot parse charge %q", site.Label, row[charge])
			}
			site.Charge = v
			site.HasCharge = true
		}

		sites = append(sites, site)
	}

	return sites, nil
}

// element extracts the element symbol from a type symbol: the leading
// letters, two when they spell an element, else one (ZN2+ gives Zn, OW gives
// O). It returns "" when no element matches.
func element(s string) string {
	one, two := leading(s)
	if two != "" && elements[two] {
		return two
	}
	if elements[one] {
		return one
	}
	return ""
}

// labelElement extracts the element symbol from a label. An upper case second
// letter is read as a suffix when the first letter is an element on its own
// (CA1 gives C, OW1 gives O, HW2 gives H, ZN1 gives Zn).
func labelElement(label string) string {
	one, two := leading(label)
	if two != "" && label[1] >= 'A' && label[1] <= 'Z' && elements[one] {
		return one
	}
	return element(label)
}

// leading returns the first letter capitalized and the first two letters as
// an element symbol, "" when absent.
func leading(s string) (one, two string) {
	if len(s) == 0 || !isLetter(s[0]) {
		return
	}
	one = strings.ToUpper(s[:1])
	if len(s) > 1 && isLetter(s[1]) {
		two = one + strings.ToLower(s[1:2])
	}
	return
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

var elements = func() map[string]bool {
	m := make(map[string]bool)
	for _, v := range strings.Fields(`
		H He Li Be B C N O F Ne Na Mg Al Si P S Cl Ar K Ca Sc Ti V Cr Mn Fe Co
		Ni Cu Zn Ga Ge As Se Br Kr Rb Sr Y Zr Nb Mo Tc Ru Rh Pd Ag Cd In Sn Sb
		Te I Xe Cs Ba La Ce Pr Nd Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu Hf Ta W Re
		Os Ir Pt Au Hg Tl Pb Bi Po At Rn Fr Ra Ac Th Pa U Np Pu Am Cm Bk Cf Es
		Fm Md No Lr Rf Db Sg Bh Hs Mt Ds Rg Cn Nh Fl Mc Lv Ts Og D`) {
		m[v] = true
	}
	return m
}()
