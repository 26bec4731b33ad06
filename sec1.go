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
	"bytes"

	"github.com/kms-oss/eckey/der"
)

// The ECPrivateKey structure of RFC 5915:
//
//	ECPrivateKey ::= SEQUENCE {
//	  version    INTEGER { ecPrivkeyVer1(1) },
//	  privateKey OCTET STRING,
//	  parameters [0] ECParameters {{ NamedCurve }} OPTIONAL,
//	  publicKey  [1] BIT STRING OPTIONAL
//	}
//
// The privateKey OCTET STRING is the scalar at field width. Standalone
// encodings carry the named curve in [0]; the structure embedded in a
// PKCS #8 container omits it, since the outer AlgorithmIdentifier names
// the curve.

var sec1Version = []byte{1}

// MarshalSEC1 returns the RFC 5915 DER encoding of k, including the
// named curve and, when known, the public key element.
func (k *Key) MarshalSEC1() ([]byte, error) {
	return k.marshalSEC1(true)
}

func (k *Key) marshalSEC1(includeParams bool) ([]byte, error) {
	if !k.IsPrivate() {
		return nil, errWrongKeyKind("rfc5915", "private")
	}

	elems := [][]byte{
		der.Integer(derShapeInteger(sec1Version)),
		der.OctetString(k.d),
	}
	if includeParams {
		oid, err := der.ObjectIdentifier(k.curve.OID)
		if err != nil {
			return nil, err
		}
		elems = append(elems, der.Explicit(0, oid))
	}
	if k.hasPublic() {
		elems = append(elems, der.Explicit(1, der.BitString(k.Point())))
	}
	return der.Sequence(elems...), nil
}

// ParseSEC1 parses an RFC 5915 ECPrivateKey. The structure must carry
// its named curve; without it the key material cannot be interpreted.
func ParseSEC1(b []byte) (*Key, error) {
	r := der.NewReader(b)
	k, err := parseSEC1Body(r, nil)
	if err != nil {
		return nil, err
	}
	if err := r.End(); err != nil {
		return nil, err
	}
	return k, nil
}

// parseSEC1Body parses an ECPrivateKey structure from r. outer is the
// curve named by an enclosing container's AlgorithmIdentifier, or nil
// when the structure stands alone. When both outer and the structure's
// own [0] element are present they must agree.
func parseSEC1Body(r *der.Reader, outer *Curve) (*Key, error) {
	seq, err := r.Sequence()
	if err != nil {
		return nil, err
	}
	version, err := seq.Integer()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(version, sec1Version) {
		return nil, errInvalidEncoding("ECPrivateKey version is % x, want 1", version)
	}
	rawD, err := seq.OctetString()
	if err != nil {
		return nil, err
	}

	curve := outer
	params, ok, err := seq.OptionalExplicit(0)
	if err != nil {
		return nil, err
	}
	if ok {
		oid, err := params.ObjectIdentifier()
		if err != nil {
			return nil, err
		}
		if err := params.End(); err != nil {
			return nil, err
		}
		inner, err := CurveByOID(oid)
		if err != nil {
			return nil, err
		}
		if outer != nil && outer != inner {
			return nil, errCurveMismatch(outer, inner)
		}
		curve = inner
	}
	if curve == nil {
		return nil, errMissingField("parameters")
	}

	d, err := padTo(rawD, curve.Size, "d")
	if err != nil {
		return nil, err
	}
	k := &Key{curve: curve, d: d}

	pub, ok, err := seq.OptionalExplicit(1)
	if err != nil {
		return nil, err
	}
	if ok {
		point, err := pub.BitString()
		if err != nil {
			return nil, err
		}
		if err := pub.End(); err != nil {
			return nil, err
		}
		if k.x, k.y, err = splitPoint(curve, point); err != nil {
			return nil, err
		}
	}

	if err := seq.End(); err != nil {
		return nil, err
	}
	return k, nil
}
