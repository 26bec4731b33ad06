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
	"fmt"
	"strings"
)

// Format names accepted by Marshal, MarshalPEM, EncodeToString and
// ParseDER. The RFC names are aliases for the colloquial ones.
const (
	FormatPEM     = "pem"
	FormatPKCS8   = "pkcs8"
	FormatRFC5208 = "rfc5208"
	FormatSEC1    = "sec1"
	FormatRFC5915 = "rfc5915"
	FormatSPKI    = "spki"
	FormatRFC5280 = "rfc5280"
	FormatJWK     = "jwk"
)

var formatAliases = map[string]string{
	FormatPEM:     FormatPEM,
	FormatPKCS8:   FormatPKCS8,
	FormatRFC5208: FormatPKCS8,
	FormatSEC1:    FormatSEC1,
	FormatRFC5915: FormatSEC1,
	FormatSPKI:    FormatSPKI,
	FormatRFC5280: FormatSPKI,
	FormatJWK:     FormatJWK,
}

// resolveFormat maps a format name or alias, case-insensitively, to its
// canonical name. The empty string resolves to "pem".
func resolveFormat(format string) (string, error) {
	if format == "" {
		return FormatPEM, nil
	}
	if f, ok := formatAliases[strings.ToLower(format)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("eckey: unknown format %q", format)
}

// Marshal encodes k in the named format. The container formats produce
// DER; "pem" (also chosen by the empty string) produces the PEM
// encoding of the kind-appropriate default container; "jwk" produces a
// JSON document.
func (k *Key) Marshal(format string) ([]byte, error) {
	f, err := resolveFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatPEM:
		return k.MarshalPEM("")
	case FormatPKCS8:
		return k.MarshalPKCS8()
	case FormatSEC1:
		return k.MarshalSEC1()
	case FormatSPKI:
		return k.MarshalSPKI()
	default:
		return k.MarshalJSON()
	}
}

// EncodeToString is Marshal with a textual result: PEM and JWK output
// are returned as-is, DER output in standard base64.
func (k *Key) EncodeToString(format string) (string, error) {
	f, err := resolveFormat(format)
	if err != nil {
		return "", err
	}
	b, err := k.Marshal(f)
	if err != nil {
		return "", err
	}
	switch f {
	case FormatPEM, FormatJWK:
		return string(b), nil
	default:
		return base64.StdEncoding.EncodeToString(b), nil
	}
}
