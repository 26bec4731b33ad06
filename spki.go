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
	"github.com/kms-oss/eckey/der"
)

// MarshalSPKI returns the RFC 5280 SubjectPublicKeyInfo DER encoding
// of k's public part:
//
//	SubjectPublicKeyInfo ::= SEQUENCE {
//	  algorithm        AlgorithmIdentifier,
//	  subjectPublicKey BIT STRING
//	}
//
// The BIT STRING holds the uncompressed point with zero unused bits.
func (k *Key) MarshalSPKI() ([]byte, error) {
	if !k.hasPublic() {
		return nil, errWrongKeyKind("spki", "public")
	}
	alg, err := algorithmIdentifier(k.curve)
	if err != nil {
		return nil, err
	}
	return der.Sequence(alg, der.BitString(k.Point())), nil
}

// ParseSPKI parses an RFC 5280 SubjectPublicKeyInfo holding an EC key.
func ParseSPKI(b []byte) (*Key, error) {
	r := der.NewReader(b)
	seq, err := r.Sequence()
	if err != nil {
		return nil, err
	}
	curve, err := parseAlgorithmIdentifier(seq)
	if err != nil {
		return nil, err
	}
	point, err := seq.BitString()
	if err != nil {
		return nil, err
	}
	if err := seq.End(); err != nil {
		return nil, err
	}
	if err := r.End(); err != nil {
		return nil, err
	}
	x, y, err := splitPoint(curve, point)
	if err != nil {
		return nil, err
	}
	return &Key{curve: curve, x: x, y: y}, nil
}
