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
	"encoding/asn1"

	"github.com/kms-oss/eckey/der"
)

// id-ecPublicKey, the algorithm identifier shared by every EC key
// container regardless of key kind.
var oidECPublicKey = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}

var pkcs8Version = []byte{0}

// algorithmIdentifier returns the AlgorithmIdentifier SEQUENCE naming
// id-ecPublicKey with c as the named curve parameter.
func algorithmIdentifier(c *Curve) ([]byte, error) {
	alg, err := der.ObjectIdentifier(oidECPublicKey)
	if err != nil {
		return nil, err
	}
	params, err := der.ObjectIdentifier(c.OID)
	if err != nil {
		return nil, err
	}
	return der.Sequence(alg, params), nil
}

// parseAlgorithmIdentifier reads an AlgorithmIdentifier and resolves
// its named curve.
func parseAlgorithmIdentifier(r *der.Reader) (*Curve, error) {
	seq, err := r.Sequence()
	if err != nil {
		return nil, err
	}
	alg, err := seq.ObjectIdentifier()
	if err != nil {
		return nil, err
	}
	if !alg.Equal(oidECPublicKey) {
		return nil, errUnsupportedAlgorithm(alg)
	}
	params, err := seq.ObjectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := seq.End(); err != nil {
		return nil, err
	}
	return CurveByOID(params)
}

// MarshalPKCS8 returns the RFC 5208 PrivateKeyInfo DER encoding of k:
//
//	PrivateKeyInfo ::= SEQUENCE {
//	  version             INTEGER { v1(0) },
//	  privateKeyAlgorithm AlgorithmIdentifier,
//	  privateKey          OCTET STRING
//	}
//
// The privateKey OCTET STRING wraps the ECPrivateKey structure without
// its [0] parameters element.
func (k *Key) MarshalPKCS8() ([]byte, error) {
	if !k.IsPrivate() {
		return nil, errWrongKeyKind("pkcs8", "private")
	}
	alg, err := algorithmIdentifier(k.curve)
	if err != nil {
		return nil, err
	}
	inner, err := k.marshalSEC1(false)
	if err != nil {
		return nil, err
	}
	return der.Sequence(
		der.Integer(derShapeInteger(pkcs8Version)),
		alg,
		der.OctetString(inner),
	), nil
}

// ParsePKCS8 parses an RFC 5208 PrivateKeyInfo holding an EC key. A
// curve named by an inner [0] parameters element must match the outer
// AlgorithmIdentifier.
func ParsePKCS8(b []byte) (*Key, error) {
	r := der.NewReader(b)
	seq, err := r.Sequence()
	if err != nil {
		return nil, err
	}
	version, err := seq.Integer()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(version, pkcs8Version) {
		return nil, errInvalidEncoding("PrivateKeyInfo version is % x, want 0", version)
	}
	curve, err := parseAlgorithmIdentifier(seq)
	if err != nil {
		return nil, err
	}
	body, err := seq.OctetStringReader()
	if err != nil {
		return nil, err
	}
	k, err := parseSEC1Body(body, curve)
	if err != nil {
		return nil, err
	}
	if err := body.End(); err != nil {
		return nil, err
	}
	if err := seq.End(); err != nil {
		return nil, err
	}
	if err := r.End(); err != nil {
		return nil, err
	}
	return k, nil
}
