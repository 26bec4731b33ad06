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
	"crypto"
	"fmt"

	"github.com/kms-oss/eckey"

	"cloud.google.com/go/kms/apiv1/kmspb"
)

// algDef contains details about a KMS algorithm.
type algDef struct {
	Purpose kmspb.CryptoKey_CryptoKeyPurpose
	Curve   *eckey.Curve
	Hash    crypto.Hash
}

// algorithms maps KMS algorithms to their definitions. All supported
// algorithms are ECDSA variants.
var algorithms = map[kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm]algDef{
	kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256: {
		Purpose: kmspb.CryptoKey_ASYMMETRIC_SIGN,
		Curve:   eckey.P256,
		Hash:    crypto.SHA256,
	},
	kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256: {
		Purpose: kmspb.CryptoKey_ASYMMETRIC_SIGN,
		Curve:   eckey.Secp256k1,
		Hash:    crypto.SHA256,
	},
	kmspb.CryptoKeyVersion_EC_SIGN_P384_SHA384: {
		Purpose: kmspb.CryptoKey_ASYMMETRIC_SIGN,
		Curve:   eckey.P384,
		Hash:    crypto.SHA384,
	},
	kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm(14): // EC_SIGN_P521_SHA512
	{
		Purpose: kmspb.CryptoKey_ASYMMETRIC_SIGN,
		Curve:   eckey.P521,
		Hash:    crypto.SHA512,
	},
}

// nameForValue retrieves the mapped name corresponding to value, or a string
// representation of the numeric value if the value is unknown.
func nameForValue(names map[int32]string, value int32) string {
	if name, ok := names[value]; ok {
		return name
	}
	return fmt.Sprintf("%d", value)
}

// validateProtectionLevel returns nil on success, or Unimplemented if the
// supplied protection level is not supported. Note that
// PROTECTION_LEVEL_UNSPECIFIED is not a supported level.
func validateProtectionLevel(pl kmspb.ProtectionLevel) error {
	switch pl {
	case kmspb.ProtectionLevel_SOFTWARE, kmspb.ProtectionLevel_HSM:
		return nil
	default:
		return errUnimplemented("unsupported protection level: %s",
			nameForValue(kmspb.ProtectionLevel_name, int32(pl)))
	}
}

// algorithmDef returns an algDef corresponding to the supplied algorithm, or
// Unimplemented if the algorithm is not supported.
func algorithmDef(alg kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm) (algDef, error) {
	def, ok := algorithms[alg]
	if !ok {
		return algDef{}, errUnimplemented("unsupported algorithm: %s",
			nameForValue(kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm_name, int32(alg)))
	}
	return def, nil
}

// validateAlgorithm returns nil on success, Unimplemented if the supplied
// algorithm is not supported, or InvalidArgument if the algorithm is
// inconsistent with the supplied purpose. Note that
// CRYPTO_KEY_VERSION_ALGORITHM_UNSPECIFIED is not a supported algorithm.
func validateAlgorithm(alg kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm, purpose kmspb.CryptoKey_CryptoKeyPurpose) error {
	def, err := algorithmDef(alg)
	if err != nil {
		return err
	}
	if purpose != def.Purpose {
		return errInvalidArgument("algorithm %s is not valid for purpose %s",
			nameForValue(kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm_name, int32(alg)),
			nameForValue(kmspb.CryptoKey_CryptoKeyPurpose_name, int32(purpose)))
	}
	return nil
}
