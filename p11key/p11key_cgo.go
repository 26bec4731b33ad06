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

//go:build cgo

package p11key

import (
	"fmt"

	"github.com/kms-oss/eckey"
	"github.com/miekg/pkcs11"
)

// FetchPublicKey reads the EC attributes of a key object on a live
// token and converts them. The object must expose CKA_EC_PARAMS and
// CKA_EC_POINT, which public EC keys are required to.
func FetchPublicKey(p *pkcs11.Ctx, session pkcs11.SessionHandle, handle pkcs11.ObjectHandle) (*eckey.Key, error) {
	attrs, err := p.GetAttributeValue(session, handle, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_EC_PARAMS, nil),
		pkcs11.NewAttribute(pkcs11.CKA_EC_POINT, nil),
	})
	if err != nil {
		return nil, fmt.Errorf("p11key: reading EC attributes: %w", err)
	}

	curve, err := CurveFromParams(attrs[0].Value)
	if err != nil {
		return nil, err
	}
	return KeyFromPoint(curve, attrs[1].Value)
}
