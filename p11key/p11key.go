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

// Package p11key converts elliptic curve public keys between eckey form
// and their PKCS #11 attribute encodings. CKA_EC_PARAMS carries the DER
// OBJECT IDENTIFIER of the named curve; CKA_EC_POINT carries a DER
// OCTET STRING wrapping the ANSI X9.62 uncompressed point.
package p11key

import (
	"fmt"

	"github.com/kms-oss/eckey"
	"github.com/kms-oss/eckey/der"
)

// ParamsAttribute returns the CKA_EC_PARAMS value for c.
func ParamsAttribute(c *eckey.Curve) ([]byte, error) {
	return der.ObjectIdentifier(c.OID)
}

// CurveFromParams resolves a CKA_EC_PARAMS value to its curve. Only the
// namedCurve choice is supported; tokens carrying explicit domain
// parameters are not.
func CurveFromParams(params []byte) (*eckey.Curve, error) {
	r := der.NewReader(params)
	oid, err := r.ObjectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := r.End(); err != nil {
		return nil, err
	}
	return eckey.CurveByOID(oid)
}

// PointAttribute returns the CKA_EC_POINT value for k's public part.
func PointAttribute(k *eckey.Key) ([]byte, error) {
	point := k.Point()
	if point == nil {
		return nil, fmt.Errorf("p11key: %w: public coordinates are unknown", eckey.ErrWrongKeyKind)
	}
	return der.OctetString(point), nil
}

// KeyFromPoint builds a public key on c from a CKA_EC_POINT value.
func KeyFromPoint(c *eckey.Curve, attr []byte) (*eckey.Key, error) {
	r := der.NewReader(attr)
	point, err := r.OctetString()
	if err != nil {
		return nil, err
	}
	if err := r.End(); err != nil {
		return nil, err
	}
	return eckey.New(eckey.KeyOptions{Curve: c.Name, PublicKey: point})
}
