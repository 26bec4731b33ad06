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
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Provider carries the key operations that require curve arithmetic.
// The codec side of the package never performs arithmetic, so Keys
// parsed here can be handed to any Provider, whether in-process or
// backed by an external service.
type Provider interface {
	// Generate creates a new private key on c.
	Generate(c *Curve) (*Key, error)

	// ECDH returns the shared secret between priv and peer's public
	// part: the x coordinate of the product point, at field width.
	ECDH(priv, peer *Key) ([]byte, error)

	// Sign hashes message with h and returns an ASN.1 DER ECDSA
	// signature.
	Sign(priv *Key, h crypto.Hash, message []byte) ([]byte, error)

	// Verify hashes message with h and checks signature against pub.
	// A well-formed but wrong signature is (false, nil); a structural
	// problem is an error.
	Verify(pub *Key, h crypto.Hash, message, signature []byte) (bool, error)
}

// Local is the in-process Provider: crypto/ecdsa and crypto/elliptic
// for the NIST curves, btcec for secp256k1.
var Local Provider = localProvider{}

// Generate creates a new private key on the named curve using Local.
func Generate(curveName string) (*Key, error) {
	c, err := CurveByName(curveName)
	if err != nil {
		return nil, err
	}
	return Local.Generate(c)
}

// GenerateKey creates a new private key on c using Local.
func GenerateKey(c *Curve) (*Key, error) {
	return Local.Generate(c)
}

// ECDH computes the shared secret with peer using Local.
func (k *Key) ECDH(peer *Key) ([]byte, error) {
	return Local.ECDH(k, peer)
}

// ECDHPoint computes the shared secret with a peer public key given as
// an uncompressed point on k's curve.
func (k *Key) ECDHPoint(point []byte) ([]byte, error) {
	x, y, err := splitPoint(k.curve, point)
	if err != nil {
		return nil, err
	}
	return Local.ECDH(k, &Key{curve: k.curve, x: x, y: y})
}

// Sign hashes message with h and signs the digest using Local.
func (k *Key) Sign(h crypto.Hash, message []byte) ([]byte, error) {
	return Local.Sign(k, h, message)
}

// Verify hashes message with h and checks signature using Local.
func (k *Key) Verify(h crypto.Hash, message, signature []byte) (bool, error) {
	return Local.Verify(k, h, message, signature)
}

// Signer returns k as a crypto.Signer over pre-hashed digests.
func (k *Key) Signer() (crypto.Signer, error) {
	return k.ECDSA()
}

type localProvider struct{}

func (localProvider) Generate(c *Curve) (*Key, error) {
	priv, err := ecdsa.GenerateKey(c.ec(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return FromECDSA(priv)
}

func (localProvider) ECDH(priv, peer *Key) ([]byte, error) {
	if !priv.IsPrivate() {
		return nil, errWrongKeyKind("ecdh", "private")
	}
	if priv.curve != peer.curve {
		return nil, errCurveMismatch(priv.curve, peer.curve)
	}
	px, py, err := peer.publicPoint()
	if err != nil {
		return nil, err
	}
	x, _ := priv.curve.ec().ScalarMult(px, py, priv.d)
	out := make([]byte, priv.curve.Size)
	return x.FillBytes(out), nil
}

func (localProvider) Sign(priv *Key, h crypto.Hash, message []byte) ([]byte, error) {
	key, err := priv.ECDSA()
	if err != nil {
		return nil, err
	}
	digest, err := hashMessage(h, message)
	if err != nil {
		return nil, err
	}
	return ecdsa.SignASN1(rand.Reader, key, digest)
}

func (localProvider) Verify(pub *Key, h crypto.Hash, message, signature []byte) (bool, error) {
	key, err := pub.ECDSAPublic()
	if err != nil {
		return false, err
	}
	digest, err := hashMessage(h, message)
	if err != nil {
		return false, err
	}
	return ecdsa.VerifyASN1(key, digest, signature), nil
}

func hashMessage(h crypto.Hash, message []byte) ([]byte, error) {
	if !h.Available() {
		return nil, fmt.Errorf("eckey: hash %v is not linked into the binary", h)
	}
	hasher := h.New()
	hasher.Write(message)
	return hasher.Sum(nil), nil
}

// publicPoint returns the public coordinates as big integers, verifying
// that the point is on the curve.
func (k *Key) publicPoint() (x, y *big.Int, err error) {
	if !k.hasPublic() {
		return nil, nil, fmt.Errorf("eckey: %w: public coordinates are unknown", ErrWrongKeyKind)
	}
	x = new(big.Int).SetBytes(k.x)
	y = new(big.Int).SetBytes(k.y)
	if !k.curve.ec().IsOnCurve(x, y) {
		return nil, nil, errInvalidEncoding("point is not on %s", k.curve)
	}
	return x, y, nil
}

// ec returns the arithmetic implementation backing c.
func (c *Curve) ec() elliptic.Curve {
	switch c {
	case P256:
		return elliptic.P256()
	case Secp256k1:
		return btcec.S256()
	case P384:
		return elliptic.P384()
	case P521:
		return elliptic.P521()
	}
	panic("eckey: no implementation for curve " + c.Name)
}

// curveFromEC maps an arithmetic curve back to its descriptor.
func curveFromEC(ec elliptic.Curve) (*Curve, error) {
	switch ec {
	case elliptic.P256():
		return P256, nil
	case btcec.S256():
		return Secp256k1, nil
	case elliptic.P384():
		return P384, nil
	case elliptic.P521():
		return P521, nil
	}
	// Keys built from CurveParams copies compare by name.
	switch ec.Params().Name {
	case "P-256":
		return P256, nil
	case "secp256k1":
		return Secp256k1, nil
	case "P-384":
		return P384, nil
	case "P-521":
		return P521, nil
	}
	return nil, errUnknownCurve(ec.Params().Name)
}

// FromECDSA converts a crypto/ecdsa private key.
func FromECDSA(priv *ecdsa.PrivateKey) (*Key, error) {
	c, err := curveFromEC(priv.Curve)
	if err != nil {
		return nil, err
	}
	k := &Key{curve: c}
	if k.d, err = bigToFixed(priv.D, c.Size, "d"); err != nil {
		return nil, err
	}
	if k.x, err = bigToFixed(priv.X, c.Size, "x"); err != nil {
		return nil, err
	}
	if k.y, err = bigToFixed(priv.Y, c.Size, "y"); err != nil {
		return nil, err
	}
	return k, nil
}

// FromECDSAPublic converts a crypto/ecdsa public key.
func FromECDSAPublic(pub *ecdsa.PublicKey) (*Key, error) {
	c, err := curveFromEC(pub.Curve)
	if err != nil {
		return nil, err
	}
	k := &Key{curve: c}
	if k.x, err = bigToFixed(pub.X, c.Size, "x"); err != nil {
		return nil, err
	}
	if k.y, err = bigToFixed(pub.Y, c.Size, "y"); err != nil {
		return nil, err
	}
	return k, nil
}

// ECDSA returns k as a crypto/ecdsa private key. When only the scalar
// is known the public coordinates are derived.
func (k *Key) ECDSA() (*ecdsa.PrivateKey, error) {
	if !k.IsPrivate() {
		return nil, errWrongKeyKind("ecdsa", "private")
	}
	ec := k.curve.ec()
	var x, y *big.Int
	if k.hasPublic() {
		x = new(big.Int).SetBytes(k.x)
		y = new(big.Int).SetBytes(k.y)
	} else {
		x, y = ec.ScalarBaseMult(k.d)
	}
	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: ec, X: x, Y: y},
		D:         new(big.Int).SetBytes(k.d),
	}, nil
}

// ECDSAPublic returns k's public part as a crypto/ecdsa public key.
func (k *Key) ECDSAPublic() (*ecdsa.PublicKey, error) {
	x, y, err := k.publicPoint()
	if err != nil {
		return nil, err
	}
	return &ecdsa.PublicKey{Curve: k.curve.ec(), X: x, Y: y}, nil
}

func bigToFixed(v *big.Int, size int, name string) ([]byte, error) {
	if v == nil {
		return nil, errMissingField(name)
	}
	if (v.BitLen()+7)/8 > size {
		return nil, errCoordinateTooLong(name, (v.BitLen()+7)/8, size)
	}
	out := make([]byte, size)
	return v.FillBytes(out), nil
}
