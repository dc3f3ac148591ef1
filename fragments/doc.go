// Package fragments provides low-level encoding and decoding helpers
// to construct and parse obsipc messages.
//
// The provided encoder and decoder are very low level, and do not
// encode any obsipc semantics. Everything is little-endian and
// unaligned: integers are written at their natural width, strings and
// byte blobs are prefixed with their length as a uint32.
//
// You should not need to use this package at all, unless you are
// writing your own codec on top of the obsipc wire format, such as the
// property descriptors in package property.
package fragments
