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
	"encoding/pem"
	"fmt"
)

// PEM block types map one-to-one onto container encodings.
const (
	pemTypePKCS8 = "PRIVATE KEY"
	pemTypeSEC1  = "EC PRIVATE KEY"
	pemTypeSPKI  = "PUBLIC KEY"
)

// ParsePEM parses the first PEM block in data. The block type selects
// the container codec: "PRIVATE KEY" (PKCS #8), "EC PRIVATE KEY"
// (SEC 1) or "PUBLIC KEY" (SubjectPublicKeyInfo).
func ParsePEM(data []byte) (*Key, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errMalformedPEM("no PEM block found")
	}
	switch block.Type {
	case pemTypePKCS8:
		return ParsePKCS8(block.Bytes)
	case pemTypeSEC1:
		return ParseSEC1(block.Bytes)
	case pemTypeSPKI:
		return ParseSPKI(block.Bytes)
	default:
		return nil, errUnknownPEMKind(block.Type)
	}
}

// MarshalPEM returns the PEM encoding of k in the named container
// format. The empty string and "pem" select the kind-appropriate
// default: SEC 1 for private keys, SPKI for public keys.
func (k *Key) MarshalPEM(format string) ([]byte, error) {
	f, err := resolveFormat(format)
	if err != nil {
		return nil, err
	}
	if f == FormatPEM {
		if k.IsPrivate() {
			f = FormatSEC1
		} else {
			f = FormatSPKI
		}
	}

	var blockType string
	var derBytes []byte
	switch f {
	case FormatPKCS8:
		blockType = pemTypePKCS8
		derBytes, err = k.MarshalPKCS8()
	case FormatSEC1:
		blockType = pemTypeSEC1
		derBytes, err = k.MarshalSEC1()
	case FormatSPKI:
		blockType = pemTypeSPKI
		derBytes, err = k.MarshalSPKI()
	default:
		return nil, fmt.Errorf("eckey: format %q has no PEM form", format)
	}
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: derBytes}), nil
}
