// Package util contains the helpers shared by the calculations.
package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml"
)

// DateLayout is the layout of the first line of every report.
const DateLayout = "2006-01-02 15:04:05 -0700 MST"

// Write creates the report file: the date, then the header encoded as TOML,
// then an empty line. The file is returned for further writing and must be
// closed by the caller.
func Write(path string, header interface{}) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(f, "Date: %v\n", time.Now().Format(DateLayout))

	enc := toml.NewEncoder(f)
	err = enc.Encode(header)
	if err != nil {
		f.Close()
		return nil, err
	}

	f.Write([]byte{'\n'})
	return f, nil
}

// WriteCharges writes one row per atom: index, label and charge. Atoms
// without a label get "?".
func WriteCharges(w io.Writer, labels []string, charges []float64) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("index label charge\n")

	var b []byte
	for k, v := range charges {
		label := "?"
		if k < len(labels) {
			label = labels[k]
		}

		b = strconv.AppendInt(b[:0], int64(k), 10)
		b = append(b, ' ')
		b = append(b, label...)
		b = append(b, ' ')
		b = strconv.AppendFloat(b, v, 'g', -1, 64)
		b = append(b, '\n')
		bw.Write(b)
	}

	return bw.Flush()
}
