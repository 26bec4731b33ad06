// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package der encodes and decodes the DER structures that make up
// elliptic curve key containers.
//
// Only the subset of ASN.1 that those containers use is implemented:
// SEQUENCE, INTEGER, OCTET STRING, BIT STRING, OBJECT IDENTIFIER, and
// constructed context-specific tags. Encoding always produces canonical
// DER with minimal length octets. Decoding is strict, with one
// deliberate allowance: a length may use the long form even where the
// short form would suffice. Indefinite lengths are rejected. Every
// decoding error is a *SyntaxError carrying the absolute byte offset at
// which the problem was detected.
package der

import (
	"encoding/asn1"
	"fmt"
	"math"
)

const (
	tagInteger     = 0x02
	tagBitString   = 0x03
	tagOctetString = 0x04
	tagObjectID    = 0x06
	tagSequence    = 0x30

	// Constructed context-specific class, ORed with the tag number.
	classContextConstructed = 0xa0
)

// A SyntaxError reports malformed DER input and the byte offset at which
// it was detected, relative to the start of the buffer handed to
// NewReader.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed DER at byte %d: %s", e.Offset, e.Msg)
}

func errAt(off int, format string, a ...interface{}) error {
	return &SyntaxError{Offset: off, Msg: fmt.Sprintf(format, a...)}
}

// Sequence returns the encoding of a SEQUENCE whose content is the
// concatenation of elements.
func Sequence(elements ...[]byte) []byte {
	var content []byte
	for _, e := range elements {
		content = append(content, e...)
	}
	return appendTLV(nil, tagSequence, content)
}

// Integer returns the encoding of an INTEGER. The content bytes must
// already be in DER two's complement form; Integer only frames them.
func Integer(content []byte) []byte {
	return appendTLV(nil, tagInteger, content)
}

// OctetString returns the encoding of an OCTET STRING.
func OctetString(content []byte) []byte {
	return appendTLV(nil, tagOctetString, content)
}

// BitString returns the encoding of a BIT STRING with zero unused bits.
func BitString(content []byte) []byte {
	padded := make([]byte, len(content)+1)
	copy(padded[1:], content)
	return appendTLV(nil, tagBitString, padded)
}

// Explicit returns the encoding of the constructed context-specific
// element [n] wrapping content.
func Explicit(n int, content []byte) []byte {
	return appendTLV(nil, classContextConstructed|byte(n), content)
}

// ObjectIdentifier returns the encoding of oid, which must have at least
// two components with the standard bounds on the first two arcs.
func ObjectIdentifier(oid asn1.ObjectIdentifier) ([]byte, error) {
	if len(oid) < 2 || oid[0] < 0 || oid[0] > 2 || oid[1] < 0 ||
		(oid[0] < 2 && oid[1] >= 40) {
		return nil, fmt.Errorf("invalid object identifier %v", oid)
	}
	content := appendBase128(nil, oid[0]*40+oid[1])
	for _, arc := range oid[2:] {
		if arc < 0 {
			return nil, fmt.Errorf("invalid object identifier %v", oid)
		}
		content = appendBase128(content, arc)
	}
	return appendTLV(nil, tagObjectID, content), nil
}

func appendBase128(dst []byte, v int) []byte {
	n := 1
	for x := v >> 7; x > 0; x >>= 7 {
		n++
	}
	for i := n - 1; i >= 0; i-- {
		b := byte(v>>(uint(i)*7)) & 0x7f
		if i > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

func appendTLV(dst []byte, tag byte, content []byte) []byte {
	dst = append(dst, tag)
	dst = appendLength(dst, len(content))
	return append(dst, content...)
}

func appendLength(dst []byte, n int) []byte {
	if n < 0x80 {
		return append(dst, byte(n))
	}
	var enc [8]byte
	i := len(enc)
	for v := n; v > 0; v >>= 8 {
		i--
		enc[i] = byte(v)
	}
	dst = append(dst, byte(0x80|(len(enc)-i)))
	return append(dst, enc[i:]...)
}

// A Reader consumes DER elements from a buffer. It tracks the absolute
// offset of every element, including through nested structures, so that
// errors point at the offending byte of the original input.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader over b. Offsets in errors are relative to
// the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Empty reports whether all input has been consumed.
func (r *Reader) Empty() bool {
	return len(r.buf) == 0
}

// End verifies that no input remains.
func (r *Reader) End() error {
	if !r.Empty() {
		return errAt(r.off, "%d trailing bytes", len(r.buf))
	}
	return nil
}

// PeekTag returns the tag of the next element without consuming it. The
// second result is false at end of input.
func (r *Reader) PeekTag() (byte, bool) {
	if r.Empty() {
		return 0, false
	}
	return r.buf[0], true
}

// element consumes one element with the given tag, returning its content
// and the absolute offset of the content's first byte.
func (r *Reader) element(tag byte) (content []byte, contentOff int, err error) {
	if len(r.buf) == 0 {
		return nil, 0, errAt(r.off, "unexpected end of input")
	}
	if r.buf[0] != tag {
		return nil, 0, errAt(r.off, "unexpected tag 0x%02x, want 0x%02x", r.buf[0], tag)
	}
	if len(r.buf) < 2 {
		return nil, 0, errAt(r.off+1, "unexpected end of input")
	}
	var n, hdr int
	switch b := r.buf[1]; {
	case b < 0x80:
		n, hdr = int(b), 2
	case b == 0x80:
		return nil, 0, errAt(r.off+1, "indefinite length is not valid in DER")
	default:
		k := int(b & 0x7f)
		if k > 4 {
			return nil, 0, errAt(r.off+1, "%d-byte length", k)
		}
		if len(r.buf) < 2+k {
			return nil, 0, errAt(r.off+len(r.buf), "unexpected end of input")
		}
		var v int64
		for _, c := range r.buf[2 : 2+k] {
			v = v<<8 | int64(c)
		}
		if v > math.MaxInt32 {
			return nil, 0, errAt(r.off+1, "length %d out of range", v)
		}
		n, hdr = int(v), 2+k
	}
	if len(r.buf) < hdr+n {
		return nil, 0, errAt(r.off+len(r.buf), "unexpected end of input")
	}
	content = r.buf[hdr : hdr+n]
	contentOff = r.off + hdr
	r.buf = r.buf[hdr+n:]
	r.off += hdr + n
	return content, contentOff, nil
}

// Sequence consumes a SEQUENCE and returns a Reader over its content.
func (r *Reader) Sequence() (*Reader, error) {
	content, off, err := r.element(tagSequence)
	if err != nil {
		return nil, err
	}
	return &Reader{buf: content, off: off}, nil
}

// Explicit consumes the constructed context-specific element [n] and
// returns a Reader over its content.
func (r *Reader) Explicit(n int) (*Reader, error) {
	content, off, err := r.element(classContextConstructed | byte(n))
	if err != nil {
		return nil, err
	}
	return &Reader{buf: content, off: off}, nil
}

// OptionalExplicit is like Explicit, but reports absence instead of
// failing when the next element has a different tag or input is
// exhausted.
func (r *Reader) OptionalExplicit(n int) (*Reader, bool, error) {
	if tag, ok := r.PeekTag(); !ok || tag != classContextConstructed|byte(n) {
		return nil, false, nil
	}
	inner, err := r.Explicit(n)
	if err != nil {
		return nil, false, err
	}
	return inner, true, nil
}

// Integer consumes an INTEGER and returns its content bytes in two's
// complement form.
func (r *Reader) Integer() ([]byte, error) {
	content, off, err := r.element(tagInteger)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errAt(off, "empty INTEGER")
	}
	if len(content) > 1 && ((content[0] == 0x00 && content[1] < 0x80) ||
		(content[0] == 0xff && content[1] >= 0x80)) {
		return nil, errAt(off, "non-minimal INTEGER")
	}
	return content, nil
}

// OctetString consumes an OCTET STRING and returns its content.
func (r *Reader) OctetString() ([]byte, error) {
	content, _, err := r.element(tagOctetString)
	return content, err
}

// OctetStringReader consumes an OCTET STRING and returns a Reader over
// its content, preserving absolute offsets for structures nested inside
// it.
func (r *Reader) OctetStringReader() (*Reader, error) {
	content, off, err := r.element(tagOctetString)
	if err != nil {
		return nil, err
	}
	return &Reader{buf: content, off: off}, nil
}

// BitString consumes a BIT STRING, requires that it have zero unused
// bits, and returns its content.
func (r *Reader) BitString() ([]byte, error) {
	content, off, err := r.element(tagBitString)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errAt(off, "empty BIT STRING")
	}
	if content[0] != 0 {
		return nil, errAt(off, "BIT STRING has %d unused bits, want 0", content[0])
	}
	return content[1:], nil
}

// ObjectIdentifier consumes an OBJECT IDENTIFIER.
func (r *Reader) ObjectIdentifier() (asn1.ObjectIdentifier, error) {
	content, off, err := r.element(tagObjectID)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errAt(off, "empty OBJECT IDENTIFIER")
	}
	var oid asn1.ObjectIdentifier
	v := 0
	start := true
	for i, b := range content {
		if start && b == 0x80 {
			return nil, errAt(off+i, "non-minimal base-128 arc")
		}
		start = false
		if v > math.MaxInt32>>7 {
			return nil, errAt(off+i, "object identifier arc out of range")
		}
		v = v<<7 | int(b&0x7f)
		if b&0x80 == 0 {
			if oid == nil {
				first := 2
				if v < 80 {
					first = v / 40
				}
				oid = append(oid, first, v-first*40)
			} else {
				oid = append(oid, v)
			}
			v = 0
			start = true
		}
	}
	if !start {
		return nil, errAt(off+len(content), "truncated base-128 arc")
	}
	return oid, nil
}
