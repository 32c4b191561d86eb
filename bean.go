package truelicense

import (
	"encoding/json"
	"strings"
	"time"
)

// DistinguishedName is a minimal stand-in for the original's X.500 principal:
// enough to carry a canonical "CN=..." name and compare/print it. The core
// only ever constructs and compares these; it never validates X.500 syntax.
type DistinguishedName struct {
	name string
}

// DN builds a DistinguishedName from a canonical name string, e.g. "CN=Alice".
func DN(canonicalName string) DistinguishedName {
	return DistinguishedName{name: canonicalName}
}

// CN builds a DistinguishedName of the form "CN=<commonName>".
func CN(commonName string) DistinguishedName {
	return DN("CN=" + commonName)
}

// String returns the canonical name.
func (d DistinguishedName) String() string { return d.name }

// IsZero reports whether the name is unset.
func (d DistinguishedName) IsZero() bool { return d.name == "" }

// Equal compares two distinguished names by their canonical string form.
func (d DistinguishedName) Equal(other DistinguishedName) bool { return d.name == other.name }

// MarshalJSON renders the canonical name as a JSON string so a codec can
// round-trip a DistinguishedName despite its field being unexported.
func (d DistinguishedName) MarshalJSON() ([]byte, error) { return json.Marshal(d.name) }

// UnmarshalJSON is MarshalJSON's inverse.
func (d *DistinguishedName) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.name)
}

// CommonName extracts the value of the first "CN=" component, if any.
func (d DistinguishedName) CommonName() string {
	for _, part := range strings.Split(d.name, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "CN="); ok {
			return v
		}
	}
	return ""
}

// License is the mutable license bean. Extension fields beyond the required
// set are carried in Extra so that a codec can round-trip vendor-specific
// data without the core needing to know about it.
type License struct {
	ConsumerAmount int               `json:"consumerAmount"`
	ConsumerType   string            `json:"consumerType"`
	Holder         DistinguishedName `json:"holder"`
	Issuer         DistinguishedName `json:"issuer"`
	Issued         time.Time         `json:"issued"`
	NotBefore      *time.Time        `json:"notBefore,omitempty"`
	NotAfter       *time.Time        `json:"notAfter,omitempty"`
	Subject        string            `json:"subject"`
	Extra          map[string]any    `json:"extra,omitempty"`
}

// Clone returns a deep-enough copy of the bean: a fresh Extra map and fresh
// NotBefore/NotAfter pointers so mutating the clone never touches the
// original. This is the in-memory half of the defensive copy; the codec
// round-trip half lives in keyGenerator.init in manager.go.
func (l License) Clone() License {
	c := l
	if l.NotBefore != nil {
		nb := *l.NotBefore
		c.NotBefore = &nb
	}
	if l.NotAfter != nil {
		na := *l.NotAfter
		c.NotAfter = &na
	}
	if l.Extra != nil {
		c.Extra = make(map[string]any, len(l.Extra))
		for k, v := range l.Extra {
			c.Extra[k] = v
		}
	}
	return c
}
