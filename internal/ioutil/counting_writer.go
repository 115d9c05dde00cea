// Package ioutil provides the writer used by the RenderTo implementations.
package ioutil

import (
	"fmt"
	"io"
	"sync"

	"braces.dev/errtrace"
)

// CountingWriter wraps an io.Writer, sums written bytes and keeps the first error.
// After the first error all further writes are skipped.
type CountingWriter struct {
	w   io.Writer
	num int
	err error
}

func (cw *CountingWriter) add(n int, err error) {
	cw.num += n
	if err != nil {
		cw.err = errtrace.Wrap(err)
	}
}

// Fprint writes the operands in their default formats.
func (cw *CountingWriter) Fprint(args ...any) *CountingWriter {
	if cw.err == nil {
		cw.add(fmt.Fprint(cw.w, args...))
	}
	return cw
}

// Fprintf writes formatted output.
func (cw *CountingWriter) Fprintf(format string, args ...any) *CountingWriter {
	if cw.err == nil {
		cw.add(fmt.Fprintf(cw.w, format, args...))
	}
	return cw
}

// Call executes a RenderTo-style function.
func (cw *CountingWriter) Call(fn func(io.Writer) (int, error)) *CountingWriter {
	if cw.err == nil {
		cw.add(fn(cw.w))
	}
	return cw
}

// Result returns the total number of bytes written and the first error encountered.
func (cw *CountingWriter) Result() (num int, err error) {
	return cw.num, errtrace.Wrap(cw.err)
}

var cntWrtPool = &sync.Pool{
	New: func() any { return &CountingWriter{} },
}

func GetCountingWriter(w io.Writer) *CountingWriter {
	cw := cntWrtPool.Get().(*CountingWriter) //nolint:forcetypeassert
	cw.w = w
	return cw
}

func FreeCountingWriter(cw *CountingWriter) {
	cw.w = nil
	cw.num = 0
	cw.err = nil
	cntWrtPool.Put(cw)
}
