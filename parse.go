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
	"fmt"
)

// Parse parses textual key material: a PEM document, or a JWK when the
// input's first non-space byte is '{'. Raw DER needs an explicit format
// and goes through ParseDER.
func Parse(data []byte) (*Key, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseJWK(trimmed)
	}
	return ParsePEM(data)
}

// ParseDER parses container DER in the named format: "pkcs8"/"rfc5208",
// "sec1"/"rfc5915" or "spki"/"rfc5280".
func ParseDER(format string, b []byte) (*Key, error) {
	f, err := resolveFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatPKCS8:
		return ParsePKCS8(b)
	case FormatSEC1:
		return ParseSEC1(b)
	case FormatSPKI:
		return ParseSPKI(b)
	default:
		return nil, fmt.Errorf("eckey: format %q is not a DER format", format)
	}
}
