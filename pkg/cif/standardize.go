package cif

import (
	"fmt"
	"io"
	"os"
)

// Standardize reads the CIF file src, expands it to P1 and writes it to dst in
// the canonical order. It returns the expanded structure, whose sites are in
// the order of the written file.
func Standardize(src, dst string) (*Structure, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return StandardizeReader(f, dst)
}

// StandardizeReader is like Standardize but reads the CIF content from r.
func StandardizeReader(r io.Reader, dst string) (*Structure, error) {
	s, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("Parse: %w", err)
	}
	s.Expand(DefaultTolerance)

	out, err := os.Create(dst)
	if err != nil {
		return nil, err
	}

	err = s.Write(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("Write: %w", err)
	}

	return s, nil
}
