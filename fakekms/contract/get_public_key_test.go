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

package contract

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kms-oss/eckey"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/testing/protocmp"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
)

var ignorePEMAndPEMCRC = protocmp.IgnoreFields(new(kmspb.PublicKey),
	protoreflect.Name("pem"), protoreflect.Name("pem_crc32c"))

func TestGetPublicKey(t *testing.T) {
	variations := []struct {
		Name      string
		Algorithm kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm
		Curve     *eckey.Curve
	}{
		{
			Name:      "P256",
			Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256,
			Curve:     eckey.P256,
		},
		{
			Name:      "Secp256k1",
			Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256,
			Curve:     eckey.Secp256k1,
		},
		{
			Name:      "P384",
			Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_P384_SHA384,
			Curve:     eckey.P384,
		},
		{
			Name:      "P521",
			Algorithm: kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm(14), // EC_SIGN_P521_SHA512
			Curve:     eckey.P521,
		},
	}

	for _, test := range variations {
		t.Run(test.Name, func(t *testing.T) {
			ctx := context.Background()
			ckv := client.CreateTestSignCKV(ctx, t, test.Algorithm)

			got, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{
				Name: ckv.Name,
			})
			if err != nil {
				t.Fatal(err)
			}

			want := &kmspb.PublicKey{
				Name:            ckv.Name,
				Algorithm:       test.Algorithm,
				ProtectionLevel: kmspb.ProtectionLevel_SOFTWARE,
			}

			opts := append(ProtoDiffOpts(), ignorePEMAndPEMCRC)
			if diff := cmp.Diff(want, got, opts...); diff != "" {
				t.Errorf("proto mismatch (-want +got): %s", diff)
			}

			verifyCRC32C(t, []byte(got.Pem), got.PemCrc32C)

			pub, err := eckey.ParsePEM([]byte(got.Pem))
			if err != nil {
				t.Fatalf("error parsing public key: %v", err)
			}
			if pub.Curve() != test.Curve {
				t.Errorf("pub.Curve()=%s, want %s", pub.Curve(), test.Curve)
			}
			if pub.IsPrivate() {
				t.Error("GetPublicKey returned private key material")
			}
			if len(pub.X()) != test.Curve.Size {
				t.Errorf("len(x)=%d, want %d", len(pub.X()), test.Curve.Size)
			}
		})
	}
}

// The emitted PEM must also parse with the standard library; secp256k1
// is excluded since crypto/x509 has no support for it.
func TestGetPublicKeyX509Interop(t *testing.T) {
	ctx := context.Background()
	ckv := client.CreateTestSignCKV(ctx, t, kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256)

	got, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{
		Name: ckv.Name,
	})
	if err != nil {
		t.Fatal(err)
	}

	blk, _ := pem.Decode([]byte(got.Pem))
	if blk.Type != "PUBLIC KEY" {
		t.Fatalf("blk.Type=%s, want PUBLIC KEY", blk.Type)
	}

	pub, err := x509.ParsePKIXPublicKey(blk.Bytes)
	if err != nil {
		t.Fatalf("error parsing public key: %v", err)
	}
	key, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		t.Fatalf("parsed key is %T, want *ecdsa.PublicKey", pub)
	}
	if key.Curve != elliptic.P256() {
		t.Errorf("public key curve mismatch (got %s, want P-256)", key.Curve.Params().Name)
	}
}

func TestGetPublicKeyMalformedName(t *testing.T) {
	ctx := context.Background()

	_, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{
		Name: "malformed name",
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("err=%v, want code=%s", err, codes.InvalidArgument)
	}
}

func TestGetPublicKeyNotFound(t *testing.T) {
	ctx := context.Background()

	_, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{
		Name: location + "/keyRings/foo/cryptoKeys/bar/cryptoKeyVersions/1",
	})
	if status.Code(err) != codes.NotFound {
		t.Errorf("err=%v, want code=%s", err, codes.NotFound)
	}
}

func TestGetPublicKeyDisabled(t *testing.T) {
	ctx := context.Background()
	ckv := client.CreateTestSignCKV(ctx, t, kmspb.CryptoKeyVersion_EC_SIGN_P384_SHA384)

	ckv.State = kmspb.CryptoKeyVersion_DISABLED

	_, err := client.UpdateCryptoKeyVersion(ctx, &kmspb.UpdateCryptoKeyVersionRequest{
		CryptoKeyVersion: ckv,
		UpdateMask:       &fieldmaskpb.FieldMask{Paths: []string{"state"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{
		Name: ckv.Name,
	})
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("err=%v, want code=%s", err, codes.FailedPrecondition)
	}
}
