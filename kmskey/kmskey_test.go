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

package kmskey

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	kms "cloud.google.com/go/kms/apiv1"
	"github.com/google/uuid"
	"github.com/kms-oss/eckey"
	"github.com/kms-oss/eckey/fakekms"
	"github.com/sethvargo/go-gcpkms/pkg/gcpkms"
	"google.golang.org/api/option"
	"google.golang.org/grpc"

	"cloud.google.com/go/kms/apiv1/kmspb"
)

func newTestClient(ctx context.Context, t *testing.T) *kms.KeyManagementClient {
	t.Helper()

	srv, err := fakekms.NewServer()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Close)

	cc, err := grpc.Dial(srv.Addr.String(), grpc.WithInsecure())
	if err != nil {
		t.Fatalf("error opening gRPC client connection to fakekms: %v", err)
	}

	client, err := kms.NewKeyManagementClient(ctx, option.WithGRPCConn(cc))
	if err != nil {
		t.Fatalf("error creating KMS client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// createTestVersion creates a signing key with the provided algorithm in
// a fresh KeyRing and returns the name of its first version, which is
// enabled by the time createTestVersion returns.
func createTestVersion(ctx context.Context, t *testing.T, client *kms.KeyManagementClient, alg kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm) string {
	t.Helper()

	kr, err := client.CreateKeyRing(ctx, &kmspb.CreateKeyRingRequest{
		Parent:    "projects/foo/locations/global",
		KeyRingId: uuid.NewString(),
	})
	if err != nil {
		t.Fatal(err)
	}

	ck, err := client.CreateCryptoKey(ctx, &kmspb.CreateCryptoKeyRequest{
		Parent:      kr.Name,
		CryptoKeyId: uuid.NewString(),
		CryptoKey: &kmspb.CryptoKey{
			Purpose: kmspb.CryptoKey_ASYMMETRIC_SIGN,
			VersionTemplate: &kmspb.CryptoKeyVersionTemplate{
				Algorithm: alg,
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	req := &kmspb.GetCryptoKeyVersionRequest{Name: ck.Name + "/cryptoKeyVersions/1"}
	ckv := &kmspb.CryptoKeyVersion{}
	for ckv.State != kmspb.CryptoKeyVersion_ENABLED {
		if ckv, err = client.GetCryptoKeyVersion(ctx, req); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}
	return ckv.Name
}

var signingAlgorithms = []struct {
	Name      string
	Algorithm kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm
	Curve     *eckey.Curve
	Hash      crypto.Hash
}{
	{
		Name:      "P256",
		Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256,
		Curve:     eckey.P256,
		Hash:      crypto.SHA256,
	},
	{
		Name:      "Secp256k1",
		Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256,
		Curve:     eckey.Secp256k1,
		Hash:      crypto.SHA256,
	},
	{
		Name:      "P384",
		Algorithm: kmspb.CryptoKeyVersion_EC_SIGN_P384_SHA384,
		Curve:     eckey.P384,
		Hash:      crypto.SHA384,
	},
	{
		Name:      "P521",
		Algorithm: kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm(14), // EC_SIGN_P521_SHA512
		Curve:     eckey.P521,
		Hash:      crypto.SHA512,
	},
}

func TestPublicKey(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	for _, test := range signingAlgorithms {
		t.Run(test.Name, func(t *testing.T) {
			name := createTestVersion(ctx, t, client, test.Algorithm)

			key, err := PublicKey(ctx, client, name)
			if err != nil {
				t.Fatal(err)
			}
			if key.Curve() != test.Curve {
				t.Errorf("key.Curve()=%s, want %s", key.Curve(), test.Curve)
			}
			if key.IsPrivate() {
				t.Error("PublicKey returned private key material")
			}
			if len(key.X()) != test.Curve.Size {
				t.Errorf("len(x)=%d, want %d", len(key.X()), test.Curve.Size)
			}
		})
	}
}

func TestSignerSignsAllCurves(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	for _, test := range signingAlgorithms {
		t.Run(test.Name, func(t *testing.T) {
			name := createTestVersion(ctx, t, client, test.Algorithm)

			signer, err := NewSigner(ctx, client, name)
			if err != nil {
				t.Fatal(err)
			}
			if signer.HashFunc() != test.Hash {
				t.Errorf("signer.HashFunc()=%v, want %v", signer.HashFunc(), test.Hash)
			}
			if signer.Key().Curve() != test.Curve {
				t.Errorf("signer.Key().Curve()=%s, want %s", signer.Key().Curve(), test.Curve)
			}

			data := []byte("Here is some data to authenticate")
			h := test.Hash.New()
			h.Write(data)
			digest := h.Sum(nil)

			sig, err := signer.Sign(rand.Reader, digest, test.Hash)
			if err != nil {
				t.Fatal(err)
			}

			ok, err := signer.Key().Verify(test.Hash, data, sig)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Error("signature verification failed")
			}

			if !ecdsa.VerifyASN1(signer.Public().(*ecdsa.PublicKey), digest, sig) {
				t.Error("signature verification against Public() failed")
			}
		})
	}
}

// A Signer must be usable anywhere a crypto.Signer is expected; issuing
// a self-signed certificate exercises the x509 path end to end.
func TestSignerCreatesCertificate(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)
	name := createTestVersion(ctx, t, client, kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256)

	signer, err := NewSigner(ctx, client, name)
	if err != nil {
		t.Fatal(err)
	}

	relTime := time.Now()
	template := &x509.Certificate{
		Subject:               pkix.Name{CommonName: "Test Certificate"},
		SerialNumber:          big.NewInt(1),
		NotBefore:             relTime.AddDate(0, 0, -1),
		NotAfter:              relTime.AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SignatureAlgorithm:    x509.ECDSAWithSHA256,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	if err != nil {
		t.Fatal(err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	if err := cert.CheckSignatureFrom(cert); err != nil {
		t.Errorf("certificate signature check failed: %v", err)
	}
}

// The gcpkms signer speaks to the same service surface; both signers
// must agree on the public key and digest algorithm, and signatures from
// either must verify under this package's key form.
func TestSignerMatchesGCPKMS(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)
	name := createTestVersion(ctx, t, client, kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256)

	signer, err := NewSigner(ctx, client, name)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := gcpkms.NewSigner(ctx, client, name)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := signer.HashFunc(), ref.DigestAlgorithm(); got != want {
		t.Errorf("signer.HashFunc()=%v, reference signer uses %v", got, want)
	}

	refPub, ok := ref.Public().(*ecdsa.PublicKey)
	if !ok {
		t.Fatalf("reference public key is %T, want *ecdsa.PublicKey", ref.Public())
	}
	if !refPub.Equal(signer.Public()) {
		t.Error("public key mismatch between signers")
	}

	data := []byte("Here is some data to authenticate")
	digest := sha256.Sum256(data)

	sig, err := ref.Sign(nil, digest[:], nil)
	if err != nil {
		t.Fatal(err)
	}

	ok, err = signer.Key().Verify(crypto.SHA256, data, sig)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("reference signature failed verification")
	}
}

func TestSignerRejectsBadDigests(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)
	name := createTestVersion(ctx, t, client, kmspb.CryptoKeyVersion_EC_SIGN_P256_SHA256)

	signer, err := NewSigner(ctx, client, name)
	if err != nil {
		t.Fatal(err)
	}

	digest := sha256.Sum256([]byte("here is some data"))

	if _, err := signer.Sign(rand.Reader, digest[:16], nil); err == nil {
		t.Error("Sign accepted a truncated digest")
	}
	if _, err := signer.Sign(rand.Reader, digest[:], crypto.SHA512); err == nil {
		t.Error("Sign accepted a mismatched digest algorithm")
	}
}

func TestPublicKeyNotFound(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	_, err := PublicKey(ctx, client, "projects/foo/locations/global/keyRings/bar/cryptoKeys/baz/cryptoKeyVersions/1")
	if err == nil {
		t.Error("PublicKey succeeded, want error for nonexistent version")
	}
}
