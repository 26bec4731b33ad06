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

package eckey

import (
	"encoding/base64"
	"strings"
)

// padTo returns b left-padded with zeros to size bytes. name identifies
// the value in errors.
func padTo(b []byte, size int, name string) ([]byte, error) {
	b = stripZeros(b)
	if len(b) > size {
		return nil, errCoordinateTooLong(name, len(b), size)
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out, nil
}

// stripZeros returns b with leading zero bytes removed, never going
// below one byte.
func stripZeros(b []byte) []byte {
	for len(b) > 1 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) == 0 {
		return []byte{0}
	}
	return b
}

// derShapeInteger returns the two's complement INTEGER content bytes for
// the nonnegative value b: minimal length, with a zero sign byte when
// the top bit of the first value byte is set.
func derShapeInteger(b []byte) []byte {
	b = stripZeros(b)
	if b[0] >= 0x80 {
		padded := make([]byte, len(b)+1)
		copy(padded[1:], b)
		return padded
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// derReadInteger converts INTEGER content bytes for a nonnegative value
// back to fixed width.
func derReadInteger(content []byte, size int, name string) ([]byte, error) {
	if len(content) > 0 && content[0] >= 0x80 {
		return nil, errInvalidEncoding("%s is negative", name)
	}
	return padTo(content, size, name)
}

// joinPoint returns the uncompressed point 0x04 || X || Y with both
// coordinates at the curve width.
func joinPoint(c *Curve, x, y []byte) ([]byte, error) {
	xp, err := padTo(x, c.Size, "x")
	if err != nil {
		return nil, err
	}
	yp, err := padTo(y, c.Size, "y")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1+2*c.Size)
	out[0] = 4
	copy(out[1:], xp)
	copy(out[1+c.Size:], yp)
	return out, nil
}

// splitPoint parses an uncompressed point into fixed-width coordinate
// copies.
func splitPoint(c *Curve, point []byte) (x, y []byte, err error) {
	if len(point) == 0 {
		return nil, nil, errInvalidEncoding("empty point")
	}
	if point[0] != 4 {
		return nil, nil, errInvalidEncoding("point is not in uncompressed form (leading byte 0x%02x)", point[0])
	}
	if len(point) != 1+2*c.Size {
		return nil, nil, errInvalidEncoding("point is %d bytes, want %d for %s", len(point), 1+2*c.Size, c)
	}
	x = make([]byte, c.Size)
	y = make([]byte, c.Size)
	copy(x, point[1:1+c.Size])
	copy(y, point[1+c.Size:])
	return x, y, nil
}

// b64uEncode returns the unpadded base64url encoding of b.
func b64uEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// b64uDecode decodes base64url text, tolerating trailing padding.
func b64uDecode(s, name string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, errInvalidEncoding("%s is not base64url: %v", name, err)
	}
	return b, nil
}

// DecodeString decodes base64 text in either the standard or URL-safe
// alphabet, with or without padding. It is the input normalization
// applied to textual key material supplied through KeyOptions.
func DecodeString(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if strings.ContainsAny(s, "+/") {
		b, err := base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return nil, errInvalidEncoding("not base64: %v", err)
		}
		return b, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errInvalidEncoding("not base64: %v", err)
	}
	return b, nil
}
