// Package jsoncodec is the default truelicense.Codec: it (de)serializes the
// license bean and repository model as JSON using goccy/go-json, a drop-in,
// allocation-light replacement for encoding/json.
package jsoncodec

import (
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/zzq1314zll/truelicense"
)

// Codec implements truelicense.Codec.
type Codec struct{}

// New returns the default JSON codec.
func New() Codec { return Codec{} }

type encoder struct{ w io.Writer }

func (e encoder) Encode(v any) error { return gojson.NewEncoder(e.w).Encode(v) }

type decoder struct{ r io.Reader }

func (d decoder) Decode(v any) error { return gojson.NewDecoder(d.r).Decode(v) }

func (Codec) NewEncoder(w io.Writer) truelicense.Encoder { return encoder{w: w} }
func (Codec) NewDecoder(r io.Reader) truelicense.Decoder { return decoder{r: r} }
