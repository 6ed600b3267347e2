package cif

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokValue tokenKind = iota
	tokTag
	tokLoop
	tokData
	tokReserved
)

type token struct {
	kind tokenKind
	text string
	line int
}

// tokenize splits a CIF file into tokens. Comments are dropped, quoted strings
// and semicolon text fields become values.
func tokenize(r io.Reader) ([]token, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	var (
		toks     []token
		n        int
		text     []string
		textLine int
		inText   bool
	)

	for sc.Scan() {
		n++
		line := sc.Text()

		if inText {
			if !strings.HasPrefix(line, ";") {
				text = append(text, line)
				continue
			}
			toks = append(toks, token{kind: tokValue, text: joinText(text), line: textLine})
			inText = false
			line = line[1:]
		} else if strings.HasPrefix(line, ";") {
			inText = true
			textLine = n
			text = append(text[:0], line[1:])
			continue
		}

		var err error
		toks, err = splitLine(toks, line, n)
		if err != nil {
			return nil, err
		}
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	if inText {
		return nil, formatErr(textLine, "unterminated text field")
	}

	return toks, nil
}

func joinText(lines []string) string {
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func splitLine(toks []token, line string, n int) ([]token, error) {
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case isSpace(c):
			i++
		case c == '#':
			return toks, nil
		case c == '\'' || c == '"':
			// A quote only closes the string when followed by whitespace.
			j := i + 1
			for {
				k := strings.IndexByte(line[j:], c)
				if k < 0 {
					return nil, formatErr(n, "unterminated quoted string")
				}
				j += k
				if j+1 == len(line) || isSpace(line[j+1]) {
					break
				}
				j++
			}
			toks = append(toks, token{kind: tokValue, text: line[i+1 : j], line: n})
			i = j + 1
		default:
			j := i
			for j < len(line) && !isSpace(line[j]) {
				j++
			}
			word := line[i:j]
			toks = append(toks, token{kind: classify(word), text: word, line: n})
			i = j
		}
	}

	return toks, nil
}

func classify(word string) tokenKind {
	lower := strings.ToLower(word)
	switch {
	case strings.HasPrefix(word, "_"):
		return tokTag
	case lower == "loop_":
		return tokLoop
	case strings.HasPrefix(lower, "data_"):
		return tokData
	case strings.HasPrefix(lower, "save_"), lower == "global_", lower == "stop_":
		return tokReserved
	}
	return tokValue
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

// block is one data block: the single-valued items and the loops. Tags are
// stored in lower case.
type block struct {
	name  string
	items map[string]string
	loops []*loop
}

type loop struct {
	tags []string
	rows [][]string
}

// column returns the index of tag in the loop or -1.
func (l *loop) column(tag string) int {
	for k, v := range l.tags {
		if v == tag {
			return k
		}
	}
	return -1
}

// parseBlock reads the first data block. Anything after a second data_
// header is ignored.
func parseBlock(toks []token) (*block, error) {
	b := &block{items: make(map[string]string)}

	i := 0
	for k, t := range toks {
		if t.kind == tokData {
			b.name = t.text[len("data_"):]
			i = k + 1
			break
		}
	}

	for i < len(toks) {
		t := toks[i]
		switch t.kind {
		case tokData:
			return b, nil
		case tokReserved:
			return nil, reservedErr(t)
		case tokTag:
			if i+1 >= len(toks) || toks[i+1].kind != tokValue {
				return nil, formatErr(t.line, "tag %s has no value", t.text)
			}
			b.items[strings.ToLower(t.text)] = toks[i+1].text
			i += 2
		case tokLoop:
			i++
			l := &loop{}
			for i < len(toks) && toks[i].kind == tokTag {
				l.tags = append(l.tags, strings.ToLower(toks[i].text))
				i++
			}
			if len(l.tags) == 0 {
				return nil, formatErr(t.line, "loop_ without tags")
			}

			var vals []string
			for i < len(toks) && toks[i].kind == tokValue {
				vals = append(vals, toks[i].text)
				i++
			}
			if len(vals)%len(l.tags) != 0 {
				return nil, formatErr(t.line, "loop has %d values for %d tags",
					len(vals), len(l.tags))
			}

			for k := 0; k < len(vals); k += len(l.tags) {
				l.rows = append(l.rows, vals[k:k+len(l.tags)])
			}
			b.loops = append(b.loops, l)
		default:
			return nil, formatErr(t.line, "unexpected value %q", t.text)
		}
	}

	return b, nil
}

// reservedErr reports a STAR construct CIF 1.1 does not allow in a data file.
func reservedErr(t token) error {
	lower := strings.ToLower(t.text)
	switch {
	case strings.HasPrefix(lower, "save_"):
		return formatErr(t.line, "save frames are not supported (%s)", t.text)
	case lower == "global_":
		return formatErr(t.line, "global_ blocks are not supported")
	}
	return formatErr(t.line, "%s is a reserved word", t.text)
}

// loop returns the first loop holding one of the tags.
func (b *block) loop(tags ...string) (*loop, int) {
	for _, l := range b.loops {
		for _, tag := range tags {
			if col := l.column(tag); col >= 0 {
				return l, col
			}
		}
	}
	return nil, -1
}

// parseNumber parses a CIF numeric value, dropping the standard uncertainty
// written in parentheses (1.234(5)).
func parseNumber(s string) (float64, error) {
	if k := strings.IndexByte(s, '('); k >= 0 {
		s = s[:k]
	}
	return strconv.ParseFloat(s, 64)
}

// unknown reports the CIF placeholders for unknown and inapplicable values.
func unknown(s string) bool {
	return s == "?" || s == "."
}
