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
	"encoding/json"
	"fmt"
)

// jwkOut fixes the member order of emitted JWK documents: kty, crv, x,
// y, then d for private keys.
type jwkOut struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"`
}

// jwkIn accepts the members this package reads. "curve" is an accepted
// alternative to "crv"; anything else, including "kty" and "kid", is
// ignored.
type jwkIn struct {
	Crv   string `json:"crv"`
	Curve string `json:"curve"`
	X     string `json:"x"`
	Y     string `json:"y"`
	D     string `json:"d"`
}

// MarshalJSON encodes k as an RFC 7517 JWK object. Coordinates are
// base64url without padding at minimal length, leading zeros stripped.
// The public coordinates must be known.
func (k *Key) MarshalJSON() ([]byte, error) {
	if !k.hasPublic() {
		return nil, errWrongKeyKind("jwk", "public")
	}
	out := jwkOut{
		Kty: "EC",
		Crv: k.curve.JWAName,
		X:   b64uEncode(stripZeros(k.x)),
		Y:   b64uEncode(stripZeros(k.y)),
	}
	if k.IsPrivate() {
		out.D = b64uEncode(stripZeros(k.d))
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an RFC 7517 JWK object into k. The curve comes
// from "crv" or "curve" in either the JWA or the vendor namespace; "x"
// and "y" are required, "d" optional. Coordinate values are re-padded
// to the curve width, and base64url padding on input is tolerated.
func (k *Key) UnmarshalJSON(data []byte) error {
	var in jwkIn
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("eckey: parsing JWK: %w", err)
	}

	name := in.Crv
	if name == "" {
		name = in.Curve
	}
	if name == "" {
		return errMissingField("crv")
	}
	c, err := CurveByName(name)
	if err != nil {
		return err
	}
	if in.X == "" {
		return errMissingField("x")
	}
	if in.Y == "" {
		return errMissingField("y")
	}

	parsed := Key{curve: c}
	if parsed.x, err = jwkCoordinate(in.X, "x", c); err != nil {
		return err
	}
	if parsed.y, err = jwkCoordinate(in.Y, "y", c); err != nil {
		return err
	}
	if in.D != "" {
		if parsed.d, err = jwkCoordinate(in.D, "d", c); err != nil {
			return err
		}
	}

	*k = parsed
	return nil
}

func jwkCoordinate(s, name string, c *Curve) ([]byte, error) {
	b, err := b64uDecode(s, name)
	if err != nil {
		return nil, err
	}
	return padTo(b, c.Size, name)
}

// ParseJWK parses an RFC 7517 JWK document.
func ParseJWK(data []byte) (*Key, error) {
	k := new(Key)
	if err := k.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return k, nil
}
