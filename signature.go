package obsipc

import (
	"fmt"
	"slices"
	"strings"
)

// A Signature describes the kinds of an ordered list of values, such
// as a function's parameters.
//
// The string form of a signature is one letter per value:
//
//	n  Null
//	f  Float
//	d  Double
//	i  Int32
//	x  Int64
//	u  UInt32
//	t  UInt64
//	s  String
//	b  Binary
//
// For example, a function taking a handle and two floats has
// signature "tff".
type Signature struct {
	kinds []Kind
}

var (
	// strToKind maps the signature letter of a kind to the Kind.
	strToKind = map[byte]Kind{
		'n': KindNull,
		'f': KindFloat,
		'd': KindDouble,
		'i': KindInt32,
		'x': KindInt64,
		'u': KindUInt32,
		't': KindUInt64,
		's': KindString,
		'b': KindBinary,
	}

	// kindToStr is the inverse of strToKind.
	kindToStr = [numKinds]byte{
		KindNull:   'n',
		KindFloat:  'f',
		KindDouble: 'd',
		KindInt32:  'i',
		KindInt64:  'x',
		KindUInt32: 'u',
		KindUInt64: 't',
		KindString: 's',
		KindBinary: 'b',
	}
)

// NewSignature returns a Signature for the given kinds.
func NewSignature(kinds ...Kind) (Signature, error) {
	for _, k := range kinds {
		if !k.Valid() {
			return Signature{}, fmt.Errorf("invalid kind %s in signature", k)
		}
	}
	return Signature{slices.Clone(kinds)}, nil
}

// ParseSignature parses a signature string.
func ParseSignature(sig string) (Signature, error) {
	kinds := make([]Kind, 0, len(sig))
	for i := range len(sig) {
		k, ok := strToKind[sig[i]]
		if !ok {
			return Signature{}, fmt.Errorf("invalid signature %q: unknown type specifier %q", sig, sig[i])
		}
		kinds = append(kinds, k)
	}
	return Signature{kinds}, nil
}

// MustParseSignature is like [ParseSignature], but panics on error.
func MustParseSignature(sig string) Signature {
	ret, err := ParseSignature(sig)
	if err != nil {
		panic(err)
	}
	return ret
}

// SignatureOf returns the signature of vs.
func SignatureOf(vs []Value) Signature {
	kinds := make([]Kind, len(vs))
	for i, v := range vs {
		kinds[i] = v.Kind()
	}
	return Signature{kinds}
}

// String returns the string encoding of the signature.
func (s Signature) String() string {
	var b strings.Builder
	for _, k := range s.kinds {
		if k.Valid() {
			b.WriteByte(kindToStr[k])
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// Len returns the number of values described by s.
func (s Signature) Len() int { return len(s.kinds) }

// Kinds returns a copy of the kinds described by s.
func (s Signature) Kinds() []Kind { return slices.Clone(s.kinds) }

// Check reports whether vs matches s exactly, by count and by kind at
// each position. The returned error explains the first mismatch.
func (s Signature) Check(vs []Value) error {
	if len(vs) != len(s.kinds) {
		return fmt.Errorf("got %d arguments, want %d (signature %q, got %q)", len(vs), len(s.kinds), s, SignatureOf(vs))
	}
	for i, v := range vs {
		if v.Kind() != s.kinds[i] {
			return fmt.Errorf("argument %d has kind %s, want %s (signature %q, got %q)", i, v.Kind(), s.kinds[i], s, SignatureOf(vs))
		}
	}
	return nil
}
