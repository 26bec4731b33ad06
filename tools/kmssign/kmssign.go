// kmssign is a simple CLI tool that performs a signature over standard
// input with a Cloud KMS elliptic curve key and writes it to standard
// output. With -pub_format it prints the key's public half in the named
// format instead of signing.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	kms "cloud.google.com/go/kms/apiv1"
	"github.com/kms-oss/eckey/kmskey"
	"github.com/sethvargo/go-gcpkms/pkg/gcpkms"
)

func signStdinToStdout(ctx context.Context, ckvName string) error {
	kmsClient, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return err
	}

	signer, err := gcpkms.NewSigner(ctx, kmsClient, ckvName)
	if err != nil {
		return err
	}

	hasher := signer.DigestAlgorithm().New()
	if _, err := io.Copy(hasher, os.Stdin); err != nil {
		return err
	}
	digest := hasher.Sum(nil)

	sig, err := signer.Sign(nil, digest, nil)
	if err != nil {
		return err
	}
	os.Stdout.Write(sig)
	return nil
}

func printPublicKey(ctx context.Context, ckvName, format string) error {
	kmsClient, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return err
	}

	pub, err := kmskey.PublicKey(ctx, kmsClient, ckvName)
	if err != nil {
		return err
	}

	out, err := pub.EncodeToString(format)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = os.Stdout.WriteString(out)
	return err
}

func main() {
	signingCkv := flag.String("signing_key", "",
		"The full name of a KMS CryptoKeyVersion to sign with.")
	pubFormat := flag.String("pub_format", "",
		"If set, print the key's public half in this format "+
			"(pem, pkcs8, sec1, spki, jwk, or an RFC alias) instead of signing.")
	flag.Parse()

	if *signingCkv == "" {
		log.Fatal("flag -signing_key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if *pubFormat != "" {
		if err := printPublicKey(ctx, *signingCkv, *pubFormat); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := signStdinToStdout(ctx, *signingCkv); err != nil {
		log.Fatal(err)
	}
}
