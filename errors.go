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
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of this package. Callers match
// them with errors.Is; the returned errors wrap these with detail about
// the offending value. Malformed DER is reported separately, as a
// *der.SyntaxError carrying the byte offset of the problem.
var (
	// ErrUnknownCurve reports a curve name or OID outside the supported
	// set.
	ErrUnknownCurve = errors.New("Invalid/unknown curve")

	// ErrCurveMismatch reports a container whose outer algorithm
	// parameters and inner curve parameters name different curves.
	ErrCurveMismatch = errors.New("curve mismatch")

	// ErrMalformedPEM reports input without valid PEM framing.
	ErrMalformedPEM = errors.New("malformed PEM")

	// ErrUnknownPEMKind reports a PEM block whose type is none of
	// "PRIVATE KEY", "EC PRIVATE KEY" or "PUBLIC KEY".
	ErrUnknownPEMKind = errors.New("unknown PEM block type")

	// ErrUnsupportedAlgorithm reports a container whose algorithm
	// identifier is not id-ecPublicKey.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrInvalidEncoding reports byte material whose shape is
	// inconsistent with the curve, such as a coordinate of the wrong
	// width or a point that is not in uncompressed form.
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrCoordinateTooLong reports a value that cannot fit the curve's
	// field width even after removing leading zeros.
	ErrCoordinateTooLong = errors.New("coordinate too long")

	// ErrMissingField reports a JWK or option set without a required
	// member.
	ErrMissingField = errors.New("missing required field")

	// ErrWrongKeyKind reports a format that the key's kind cannot
	// satisfy, such as a private-key encoding of a public key.
	ErrWrongKeyKind = errors.New("format unsupported for key kind")
)

func errUnknownCurve(name string) error {
	return fmt.Errorf("eckey: %w %q", ErrUnknownCurve, name)
}

func errUnknownCurveOID(oid asn1.ObjectIdentifier) error {
	return fmt.Errorf("eckey: %w %q", ErrUnknownCurve, oid.String())
}

func errCurveMismatch(a, b *Curve) error {
	return fmt.Errorf("eckey: %w: %s vs %s", ErrCurveMismatch, a, b)
}

func errUnsupportedAlgorithm(oid asn1.ObjectIdentifier) error {
	return fmt.Errorf("eckey: %w: OID %s is not id-ecPublicKey", ErrUnsupportedAlgorithm, oid)
}

func errMalformedPEM(detail string) error {
	return fmt.Errorf("eckey: %w: %s", ErrMalformedPEM, detail)
}

func errUnknownPEMKind(blockType string) error {
	return fmt.Errorf("eckey: %w %q", ErrUnknownPEMKind, blockType)
}

func errInvalidEncoding(format string, a ...interface{}) error {
	return fmt.Errorf("eckey: %w: %s", ErrInvalidEncoding, fmt.Sprintf(format, a...))
}

func errCoordinateTooLong(name string, n, size int) error {
	return fmt.Errorf("eckey: %w: %s is %d bytes, curve width is %d",
		ErrCoordinateTooLong, name, n, size)
}

func errMissingField(name string) error {
	return fmt.Errorf("eckey: %w %q", ErrMissingField, name)
}

func errWrongKeyKind(format, need string) error {
	return fmt.Errorf("eckey: %w: %q requires a %s key", ErrWrongKeyKind, format, need)
}
