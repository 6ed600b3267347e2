package eqeq

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// capture collects what the engine writes on both streams when the caller
// asked for a quiet run. The engine may write both streams concurrently.
type capture struct {
	mux sync.Mutex
	buf bytes.Buffer
}

func (c *capture) Write(p []byte) (int, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.buf.Write(p)
}

func (c *capture) String() string {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.buf.String()
}

// streams returns the writers handed to the solver. Verbose runs pass the
// diagnostics through, quiet runs keep them in c.
func (o *Options) streams(c *capture) (stdout, stderr io.Writer) {
	if !o.Verbose {
		return c, c
	}

	stdout, stderr = o.Stdout, o.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return
}
