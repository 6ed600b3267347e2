package cif

import "math"

// DefaultTolerance is the distance in angstrom under which two symmetry
// images are taken as the same atom.
const DefaultTolerance = 0.1

// Expand applies every symmetry operation to every site and keeps the images
// that do not overlap an atom already placed, so that the structure becomes
// P1. Sites keep the order of the input, the images of one site following
// each other. Coordinates are wrapped into [0, 1).
func (s *Structure) Expand(tol float64) {
	ops := s.Ops
	if len(ops) == 0 {
		ops = []SymOp{Identity}
	}

	sites := make([]Site, 0, len(s.Sites)*len(ops))
	for _, site := range s.Sites {
		for _, op := range ops {
			f := op.Apply(site.Fract)
			if s.overlaps(sites, f, tol) {
				continue
			}

			image := site
			image.Fract = f
			sites = append(sites, image)
		}
	}

	s.Sites = sites
	s.Ops = []SymOp{Identity}
}

// overlaps uses the minimum image of the fractional difference.
func (s *Structure) overlaps(sites []Site, f [3]float64, tol float64) bool {
	tol2 := tol * tol
	for _, o := range sites {
		var d [3]float64
		for k := 0; k < 3; k++ {
			d[k] = f[k] - o.Fract[k]
			d[k] -= math.Round(d[k])
		}

		xyz := s.Cell.Cartesian(d)
		if xyz[0]*xyz[0]+xyz[1]*xyz[1]+xyz[2]*xyz[2] < tol2 {
			return true
		}
	}
	return false
}
