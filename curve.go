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
	"encoding/asn1"
)

// Curve identifies one of the supported elliptic curves. Fields are
// read-only; the package exposes a fixed set of descriptors and all
// lookups resolve to one of them, so descriptors may be compared by
// pointer.
type Curve struct {
	// Name is the OpenSSL-style curve name, e.g. "prime256v1".
	Name string

	// JWAName is the "crv" value used in JWK documents, e.g. "P-256".
	JWAName string

	// OID is the named curve's object identifier.
	OID asn1.ObjectIdentifier

	// Size is the width of a field element in bytes. Coordinates and
	// private scalars are held and emitted at exactly this width.
	Size int
}

func (c *Curve) String() string {
	return c.Name
}

// The supported curves. These are the only Curve values the package ever
// returns.
var (
	// P256 is prime256v1, also known as secp256r1 and NIST P-256.
	P256 = &Curve{
		Name:    "prime256v1",
		JWAName: "P-256",
		OID:     asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7},
		Size:    32,
	}

	// Secp256k1 is the Koblitz curve secp256k1. Its JWA name "P-256K"
	// is not in the IANA registry, but is the value JWK documents for
	// this curve commonly carry; the vendor name is accepted anywhere a
	// JWA name is.
	Secp256k1 = &Curve{
		Name:    "secp256k1",
		JWAName: "P-256K",
		OID:     asn1.ObjectIdentifier{1, 3, 132, 0, 10},
		Size:    32,
	}

	// P384 is secp384r1, also known as NIST P-384.
	P384 = &Curve{
		Name:    "secp384r1",
		JWAName: "P-384",
		OID:     asn1.ObjectIdentifier{1, 3, 132, 0, 34},
		Size:    48,
	}

	// P521 is secp521r1, also known as NIST P-521.
	P521 = &Curve{
		Name:    "secp521r1",
		JWAName: "P-521",
		OID:     asn1.ObjectIdentifier{1, 3, 132, 0, 35},
		Size:    66,
	}
)

var curves = []*Curve{P256, Secp256k1, P384, P521}

// Curves returns the supported curve descriptors.
func Curves() []*Curve {
	out := make([]*Curve, len(curves))
	copy(out, curves)
	return out
}

// CurveByName returns the descriptor whose vendor name or JWA name
// matches name exactly.
func CurveByName(name string) (*Curve, error) {
	for _, c := range curves {
		if c.Name == name || c.JWAName == name {
			return c, nil
		}
	}
	return nil, errUnknownCurve(name)
}

// CurveByOID returns the descriptor for the named curve oid.
func CurveByOID(oid asn1.ObjectIdentifier) (*Curve, error) {
	for _, c := range curves {
		if c.OID.Equal(oid) {
			return c, nil
		}
	}
	return nil, errUnknownCurveOID(oid)
}
