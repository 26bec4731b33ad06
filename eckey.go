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

// Package eckey converts elliptic curve keys between the encodings in
// common use: PKCS #8 and SEC 1 private key DER, SubjectPublicKeyInfo
// public key DER, the PEM framings of all three, and JSON Web Keys.
// Four curves are supported: prime256v1 (P-256), secp256k1 (P-256K),
// secp384r1 (P-384) and secp521r1 (P-521).
//
// A Key holds the curve identity plus the raw coordinates at the
// curve's field width, so any supported encoding can be produced from
// any other without loss. Parsing and encoding never perform curve
// arithmetic; the Provider interface and its Local implementation carry
// the operations that do (generation, ECDH, signing).
package eckey

import (
	"bytes"
	"fmt"
)

// Key is an elliptic curve key. The zero value is not valid; Keys are
// created by the Parse functions, New, Generate, or the FromECDSA
// conversions, and must not be modified afterward.
//
// A Key is private when it holds the scalar d, and may additionally or
// instead hold the public coordinates x and y. Every coordinate is kept
// at exactly Curve().Size bytes.
type Key struct {
	curve *Curve
	x, y  []byte
	d     []byte
}

// Curve returns the key's curve descriptor.
func (k *Key) Curve() *Curve {
	return k.curve
}

// IsPrivate reports whether the key holds a private scalar.
func (k *Key) IsPrivate() bool {
	return k.d != nil
}

// hasPublic reports whether the public coordinates are known. A key
// parsed from a SEC 1 structure without the optional public element has
// only d.
func (k *Key) hasPublic() bool {
	return k.x != nil
}

// X returns a copy of the x coordinate at field width, or nil if the
// public part is unknown.
func (k *Key) X() []byte {
	return clone(k.x)
}

// Y returns a copy of the y coordinate at field width, or nil if the
// public part is unknown.
func (k *Key) Y() []byte {
	return clone(k.y)
}

// D returns a copy of the private scalar at field width, or nil for a
// public key.
func (k *Key) D() []byte {
	return clone(k.d)
}

// Point returns the uncompressed point 0x04 || X || Y, or nil if the
// public part is unknown.
func (k *Key) Point() []byte {
	if !k.hasPublic() {
		return nil
	}
	out := make([]byte, 1+2*k.curve.Size)
	out[0] = 4
	copy(out[1:], k.x)
	copy(out[1+k.curve.Size:], k.y)
	return out
}

// AsPublic returns the public form of k, sharing the coordinate
// buffers. Calling AsPublic on a public key returns k itself. A key
// holding only the private scalar has no public form to return; use the
// ECDSA conversion to derive one.
func (k *Key) AsPublic() (*Key, error) {
	if !k.hasPublic() {
		return nil, fmt.Errorf("eckey: %w: public coordinates are unknown", ErrWrongKeyKind)
	}
	if !k.IsPrivate() {
		return k, nil
	}
	return &Key{curve: k.curve, x: k.x, y: k.y}, nil
}

// Equal reports whether both keys hold the same curve and the same
// material.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.curve == other.curve &&
		bytes.Equal(k.x, other.x) &&
		bytes.Equal(k.y, other.y) &&
		bytes.Equal(k.d, other.d)
}

// KeyOptions assembles a Key from raw material. Curve is required;
// material is either D (or its alias PrivateKey), X and Y together, the
// uncompressed point in PublicKey, or a combination. Textual material
// can be converted with DecodeString.
type KeyOptions struct {
	// Curve is the vendor or JWA curve name.
	Curve string

	// X and Y are the affine public coordinates.
	X, Y []byte

	// D is the private scalar.
	D []byte

	// PublicKey is the uncompressed point 0x04 || X || Y. It is
	// consulted when X and Y are absent.
	PublicKey []byte

	// PrivateKey is an alternative name for D. It is consulted when D
	// is absent.
	PrivateKey []byte
}

// New builds a Key from opts. Coordinates shorter than the field width
// are left-padded with zeros; longer ones fail with
// ErrCoordinateTooLong. At least one of the private scalar and the
// public coordinates must be present.
func New(opts KeyOptions) (*Key, error) {
	if opts.Curve == "" {
		return nil, errMissingField("curve")
	}
	c, err := CurveByName(opts.Curve)
	if err != nil {
		return nil, err
	}

	k := &Key{curve: c}

	d := opts.D
	if d == nil {
		d = opts.PrivateKey
	}
	if d != nil {
		if k.d, err = padTo(d, c.Size, "d"); err != nil {
			return nil, err
		}
	}

	switch {
	case opts.X != nil || opts.Y != nil:
		if opts.X == nil {
			return nil, errMissingField("x")
		}
		if opts.Y == nil {
			return nil, errMissingField("y")
		}
		if k.x, err = padTo(opts.X, c.Size, "x"); err != nil {
			return nil, err
		}
		if k.y, err = padTo(opts.Y, c.Size, "y"); err != nil {
			return nil, err
		}
	case opts.PublicKey != nil:
		if k.x, k.y, err = splitPoint(c, opts.PublicKey); err != nil {
			return nil, err
		}
	}

	if k.d == nil && k.x == nil {
		return nil, errMissingField("d")
	}
	return k, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
