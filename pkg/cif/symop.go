package cif

import (
	"math"
	"strconv"
	"strings"
)

// SymOp is a symmetry operation acting on fractional coordinates:
// f' = Rot·f + Trans.
type SymOp struct {
	Rot   [3][3]float64
	Trans [3]float64
}

// Identity is the only operation of P1.
var Identity = SymOp{Rot: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}

// ParseSymOp parses an operation written as in _symmetry_equiv_pos_as_xyz,
// e.g. "-x, y+1/2, 1/2-z" or "x-y,x,z+0.25".
func ParseSymOp(s string) (SymOp, error) {
	var op SymOp

	comps := strings.Split(s, ",")
	if len(comps) != 3 {
		return op, formatErr(0, "symmetry operation %q: expected 3 components, got %d", s, len(comps))
	}

	for k, c := range comps {
		rot, trans, err := parseComponent(c)
		if err != nil {
			return op, formatErr(0, "symmetry operation %q: %v", s, err)
		}
		op.Rot[k] = rot
		op.Trans[k] = trans
	}

	return op, nil
}

type symOpError string

func (e symOpError) Error() string { return string(e) }

func parseComponent(s string) (rot [3]float64, trans float64, err error) {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	if s == "" {
		err = symOpError("empty component")
		return
	}

	i := 0
	for i < len(s) {
		sign := 1.
		if s[i] == '+' || s[i] == '-' {
			if s[i] == '-' {
				sign = -1
			}
			i++
		}

		j := i
		for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.' || s[j] == '/') {
			j++
		}

		num := 1.
		hasNum := j > i
		if hasNum {
			num, err = parseFraction(s[i:j])
			if err != nil {
				return
			}
			i = j
		}

		star := i < len(s) && s[i] == '*'
		if star {
			i++
		}

		switch {
		case i < len(s) && s[i] >= 'x' && s[i] <= 'z':
			rot[s[i]-'x'] += sign * num
			i++
		case hasNum && !star:
			trans += sign * num
		default:
			err = symOpError("unexpected term in " + strconv.Quote(s))
			return
		}
	}

	return
}

func parseFraction(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, symOpError("bad number " + strconv.Quote(s))
	}
	if !ok {
		return n, nil
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, symOpError("bad fraction " + strconv.Quote(s))
	}
	return n / d, nil
}

// Apply transforms f and wraps the result into [0, 1).
func (o SymOp) Apply(f [3]float64) (out [3]float64) {
	for k := 0; k < 3; k++ {
		v := o.Trans[k]
		for i := 0; i < 3; i++ {
			v += o.Rot[k][i] * f[i]
		}
		out[k] = wrap(v)
	}
	return
}

func wrap(v float64) float64 {
	v -= math.Floor(v)
	if v >= 1-1e-9 {
		v = 0
	}
	return v
}

// String writes the operation back in the xyz notation.
func (o SymOp) String() string {
	comps := make([]string, 3)
	for k := 0; k < 3; k++ {
		var b strings.Builder
		for i, v := range o.Rot[k] {
			switch {
			case v == 0:
				continue
			case v == 1:
				b.WriteByte('+')
			case v == -1:
				b.WriteByte('-')
			default:
				if v > 0 {
					b.WriteByte('+')
				}
				b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
				b.WriteByte('*')
			}
			b.WriteByte(byte('x' + i))
		}
		if t := o.Trans[k]; t != 0 {
			if t > 0 {
				b.WriteByte('+')
			} else {
				b.WriteByte('-')
			}
			b.WriteString(fraction(math.Abs(t)))
		}

		comps[k] = strings.TrimPrefix(b.String(), "+")
		if comps[k] == "" {
			comps[k] = "0"
		}
	}

	return strings.Join(comps, ", ")
}

// fraction writes t as n/d when d is a small crystallographic denominator.
func fraction(t float64) string {
	if t == math.Trunc(t) {
		return strconv.FormatFloat(t, 'g', -1, 64)
	}

	for _, d := range [...]int{2, 3, 4, 6, 8, 12} {
		n := t * float64(d)
		if math.Abs(n-math.Round(n)) < 1e-6 {
			return strconv.Itoa(int(math.Round(n))) + "/" + strconv.Itoa(d)
		}
	}
	return strconv.FormatFloat(t, 'g', -1, 64)
}
