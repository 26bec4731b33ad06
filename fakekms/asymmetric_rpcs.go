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

package fakekms

import (
	"context"
	"crypto"
	"crypto/rand"
	"hash/crc32"

	// SHA-2 implementations must be linked for digest handling.
	_ "crypto/sha256"
	_ "crypto/sha512"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

func crc32c(data []byte) *wrapperspb.Int64Value {
	return wrapperspb.Int64(int64(crc32.Checksum(data, crc32cTable)))
}

// GetPublicKey fakes a Cloud KMS API function.
func (f *fakeKMS) GetPublicKey(ctx context.Context, req *kmspb.GetPublicKeyRequest) (*kmspb.PublicKey, error) {
	if err := allowlist("name").check(req); err != nil {
		return nil, err
	}

	name, err := parseCryptoKeyVersionName(req.Name)
	if err != nil {
		return nil, err
	}

	ckv, err := f.cryptoKeyVersion(name)
	if err != nil {
		return nil, err
	}

	if ckv.pb.State != kmspb.CryptoKeyVersion_ENABLED {
		return nil, errFailedPrecondition("key version %s is not enabled", name)
	}

	pub, err := ckv.key.AsPublic()
	if err != nil {
		return nil, errInternal("extracting public key: %v", err)
	}

	pemPub, err := pub.MarshalPEM("spki")
	if err != nil {
		return nil, errInternal("encoding public key: %v", err)
	}

	return &kmspb.PublicKey{
		Name:            req.Name,
		Algorithm:       ckv.pb.Algorithm,
		Pem:             string(pemPub),
		PemCrc32C:       crc32c(pemPub),
		ProtectionLevel: ckv.pb.ProtectionLevel,
	}, nil
}

// AsymmetricSign fakes a Cloud KMS API function.
func (f *fakeKMS) AsymmetricSign(ctx context.Context, req *kmspb.AsymmetricSignRequest) (*kmspb.AsymmetricSignResponse, error) {
	if err := allowlist("name", "data", "data_crc32c",
		"digest.sha256", "digest.sha384", "digest.sha512", "digest_crc32c").check(req); err != nil {
		return nil, err
	}

	name, err := parseCryptoKeyVersionName(req.Name)
	if err != nil {
		return nil, err
	}

	ckv, err := f.cryptoKeyVersion(name)
	if err != nil {
		return nil, err
	}

	if ckv.pb.State != kmspb.CryptoKeyVersion_ENABLED {
		return nil, errFailedPrecondition("key version %s is not enabled", name)
	}

	def, _ := algorithmDef(ckv.pb.Algorithm)

	var digest []byte
	switch {
	case req.Digest != nil && req.Data != nil:
		return nil, errInvalidArgument("only one of digest or data must be set")
	case req.Digest == nil && req.Data == nil:
		return nil, errInvalidArgument("at least one of digest or data must be set")
	case req.Data != nil:
		if req.DataCrc32C != nil && crc32c(req.Data).Value != req.DataCrc32C.Value {
			return nil, errInvalidArgument("invalid data checksum")
		}
		h := def.Hash.New()
		h.Write(req.Data)
		digest = h.Sum(nil)
	default:
		switch def.Hash {
		case crypto.SHA256:
			digest = req.Digest.GetSha256()
		case crypto.SHA384:
			digest = req.Digest.GetSha384()
		case crypto.SHA512:
			digest = req.Digest.GetSha512()
		default:
			return nil, errInternal("unsupported hash: %d", def.Hash)
		}
		if req.DigestCrc32C != nil && crc32c(digest).Value != req.DigestCrc32C.Value {
			return nil, errInvalidArgument("invalid digest checksum")
		}
	}

	if len(digest) != def.Hash.Size() {
		return nil, errInvalidArgument("len(digest)=%d, want %d", len(digest), def.Hash.Size())
	}

	signer, err := ckv.key.Signer()
	if err != nil {
		return nil, errInternal("loading signer: %v", err)
	}
	sig, err := signer.Sign(rand.Reader, digest, def.Hash)
	if err != nil {
		return nil, errInternal("signing failed: %v", err)
	}

	return &kmspb.AsymmetricSignResponse{
		Name:                 req.Name,
		Signature:            sig,
		SignatureCrc32C:      crc32c(sig),
		VerifiedDigestCrc32C: req.DigestCrc32C != nil,
		VerifiedDataCrc32C:   req.DataCrc32C != nil,
		ProtectionLevel:      ckv.pb.ProtectionLevel,
	}, nil
}
