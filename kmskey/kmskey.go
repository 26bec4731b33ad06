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

// Package kmskey exposes Google Cloud KMS elliptic curve signing keys
// in eckey form. KMS serves public keys as SPKI PEM and keeps private
// material in the service; this package converts the public half with
// the eckey codecs (crypto/x509 cannot parse the secp256k1 curve) and
// adapts AsymmetricSign to crypto.Signer.
package kmskey

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"fmt"
	"hash/crc32"
	"io"

	kms "cloud.google.com/go/kms/apiv1"
	"github.com/kms-oss/eckey"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// algorithmParams ties a KMS EC signing algorithm to the curve it is
// defined over and the digest it signs.
type algorithmParams struct {
	curve *eckey.Curve
	hash  crypto.Hash
}

var algorithms = map[kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm]algorithmParams{
	kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256:      {eckey.P256, crypto.SHA256},
	kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256: {eckey.Secp256k1, crypto.SHA256},
	kmspb.CryptoKeyVersion_EC_SIGN_P384_SHA384:      {eckey.P384, crypto.SHA384},
	kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm(14): { // EC_SIGN_P521_SHA512
		eckey.P521, crypto.SHA512,
	},
}

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

func crc32c(data []byte) int64 {
	return int64(crc32.Checksum(data, crc32cTable))
}

// fetchPublicKey retrieves and converts the public half of the named
// CryptoKeyVersion, verifying the response checksum and that the served
// key sits on the algorithm's curve.
func fetchPublicKey(ctx context.Context, client *kms.KeyManagementClient, versionName string) (*eckey.Key, algorithmParams, error) {
	resp, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{Name: versionName})
	if err != nil {
		return nil, algorithmParams{}, fmt.Errorf("kmskey: getting public key for %s: %w", versionName, err)
	}

	params, ok := algorithms[resp.Algorithm]
	if !ok {
		return nil, algorithmParams{}, fmt.Errorf("kmskey: %s has unsupported algorithm %s", versionName, resp.Algorithm)
	}
	if resp.Name != versionName {
		return nil, algorithmParams{}, fmt.Errorf("kmskey: GetPublicKey response is for %s, want %s", resp.Name, versionName)
	}
	if resp.PemCrc32C == nil || crc32c([]byte(resp.Pem)) != resp.PemCrc32C.Value {
		return nil, algorithmParams{}, fmt.Errorf("kmskey: public key checksum mismatch for %s", versionName)
	}

	key, err := eckey.ParsePEM([]byte(resp.Pem))
	if err != nil {
		return nil, algorithmParams{}, fmt.Errorf("kmskey: parsing public key for %s: %w", versionName, err)
	}
	if key.Curve() != params.curve {
		return nil, algorithmParams{}, fmt.Errorf("kmskey: %s served a key on %s, want %s for algorithm %s",
			versionName, key.Curve(), params.curve, resp.Algorithm)
	}
	return key, params, nil
}

// PublicKey retrieves the public half of the named CryptoKeyVersion.
// The version must use one of the EC signing algorithms.
func PublicKey(ctx context.Context, client *kms.KeyManagementClient, versionName string) (*eckey.Key, error) {
	key, _, err := fetchPublicKey(ctx, client, versionName)
	return key, err
}

// Signer is a crypto.Signer backed by a KMS CryptoKeyVersion. The
// public key is fetched once at construction; Sign round-trips to the
// service.
type Signer struct {
	client      *kms.KeyManagementClient
	versionName string
	key         *eckey.Key
	pub         *ecdsa.PublicKey
	hash        crypto.Hash
}

var _ crypto.Signer = &Signer{}

// NewSigner builds a Signer for the named CryptoKeyVersion.
func NewSigner(ctx context.Context, client *kms.KeyManagementClient, versionName string) (*Signer, error) {
	key, params, err := fetchPublicKey(ctx, client, versionName)
	if err != nil {
		return nil, err
	}
	pub, err := key.ECDSAPublic()
	if err != nil {
		return nil, fmt.Errorf("kmskey: converting public key for %s: %w", versionName, err)
	}
	return &Signer{
		client:      client,
		versionName: versionName,
		key:         key,
		pub:         pub,
		hash:        params.hash,
	}, nil
}

// Key returns the public key in eckey form.
func (s *Signer) Key() *eckey.Key {
	return s.key
}

// Public implements crypto.Signer.
func (s *Signer) Public() crypto.PublicKey {
	return s.pub
}

// HashFunc returns the digest algorithm the version signs with.
func (s *Signer) HashFunc() crypto.Hash {
	return s.hash
}

// Sign implements crypto.Signer. digest must be computed with HashFunc;
// when opts names a hash it must agree. The rand argument is unused,
// signature entropy comes from the service.
func (s *Signer) Sign(_ io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != 0 && opts.HashFunc() != s.hash {
		return nil, fmt.Errorf("kmskey: signing with %v requested, key uses %v", opts.HashFunc(), s.hash)
	}
	if len(digest) != s.hash.Size() {
		return nil, fmt.Errorf("kmskey: len(digest)=%d, want %d", len(digest), s.hash.Size())
	}

	req := &kmspb.AsymmetricSignRequest{
		Name:         s.versionName,
		DigestCrc32C: wrapperspb.Int64(crc32c(digest)),
	}
	switch s.hash {
	case crypto.SHA256:
		req.Digest = &kmspb.Digest{Digest: &kmspb.Digest_Sha256{Sha256: digest}}
	case crypto.SHA384:
		req.Digest = &kmspb.Digest{Digest: &kmspb.Digest_Sha384{Sha384: digest}}
	case crypto.SHA512:
		req.Digest = &kmspb.Digest{Digest: &kmspb.Digest_Sha512{Sha512: digest}}
	default:
		return nil, fmt.Errorf("kmskey: no digest field for %v", s.hash)
	}

	resp, err := s.client.AsymmetricSign(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("kmskey: signing with %s: %w", s.versionName, err)
	}

	if resp.Name != s.versionName {
		return nil, fmt.Errorf("kmskey: AsymmetricSign response is for %s, want %s", resp.Name, s.versionName)
	}
	if !resp.VerifiedDigestCrc32C {
		return nil, fmt.Errorf("kmskey: request to %s corrupted in transit", s.versionName)
	}
	if resp.SignatureCrc32C == nil || crc32c(resp.Signature) != resp.SignatureCrc32C.Value {
		return nil, fmt.Errorf("kmskey: signature checksum mismatch from %s", s.versionName)
	}
	return resp.Signature, nil
}
