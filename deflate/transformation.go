// Package deflate is the default compression truelicense.Transformation. It
// uses klauspost/compress's flate, a faster drop-in for stdlib deflate.
package deflate

import (
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/zzq1314zll/truelicense"
)

// Transformation compresses on write and decompresses on read at the given
// flate compression level. New uses flate.DefaultCompression; the zero value
// uses level 0, which is flate.NoCompression.
type Transformation struct {
	level int
}

// New returns a deflate transformation at flate.DefaultCompression.
func New() Transformation { return Transformation{level: flate.DefaultCompression} }

// NewLevel returns a deflate transformation at the given flate level.
func NewLevel(level int) Transformation { return Transformation{level: level} }

type writeCloser struct {
	fw   *flate.Writer
	next io.WriteCloser
}

func (w *writeCloser) Write(p []byte) (int, error) { return w.fw.Write(p) }

func (w *writeCloser) Close() error {
	if err := w.fw.Close(); err != nil {
		w.next.Close()
		return err
	}
	return w.next.Close()
}

func (t Transformation) WrapWriter(w io.WriteCloser) (io.WriteCloser, error) {
	fw, err := flate.NewWriter(w, t.level)
	if err != nil {
		return nil, err
	}
	return &writeCloser{fw: fw, next: w}, nil
}

type readCloser struct {
	fr   io.ReadCloser
	next io.ReadCloser
}

func (r *readCloser) Read(p []byte) (int, error) { return r.fr.Read(p) }

func (r *readCloser) Close() error {
	err := r.fr.Close()
	if cerr := r.next.Close(); err == nil {
		err = cerr
	}
	return err
}

func (t Transformation) WrapReader(r io.ReadCloser) (io.ReadCloser, error) {
	fr := flate.NewReader(r)
	return &readCloser{fr: fr, next: r}, nil
}

var _ truelicense.Transformation = Transformation{}
