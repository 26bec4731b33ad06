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
	"fmt"
	"regexp"
	"strings"
)

// idRegexp describes the grammar for a single resource ID element.
var idRegexp = regexp.MustCompile("^[a-zA-Z0-9_-]{1,63}$")

// checkID returns InvalidArgument if the provided ID does not comply with the
// KMS ID naming rules.
func checkID(id string) error {
	if !idRegexp.MatchString(id) {
		return errInvalidArgument("invalid id: %s", id)
	}
	return nil
}

// cutCollection splits a resource name of the form parent/collection/id,
// requiring that id be a well-formed final ID element.
func cutCollection(name, collection string) (parent, id string, ok bool) {
	parent, id, ok = strings.Cut(name, "/"+collection+"/")
	if !ok || parent == "" || !idRegexp.MatchString(id) {
		return "", "", false
	}
	return parent, id, true
}

type locationName struct {
	ProjectID, LocationID string
}

func parseLocationName(name string) (locationName, error) {
	if rest, ok := strings.CutPrefix(name, "projects/"); ok {
		project, location, ok := strings.Cut(rest, "/locations/")
		if ok && project != "" && location != "" &&
			!strings.ContainsRune(project, '/') && !strings.ContainsRune(location, '/') {
			return locationName{ProjectID: project, LocationID: location}, nil
		}
	}
	return locationName{}, errMalformedName("location", name)
}

func (n locationName) Project() string {
	return fmt.Sprintf("projects/%s", n.ProjectID)
}

func (n locationName) Location() string {
	return fmt.Sprintf("projects/%s/locations/%s", n.ProjectID, n.LocationID)
}

func (n locationName) String() string {
	return n.Location()
}

type keyRingName struct {
	locationName
	KeyRingID string
}

func parseKeyRingName(name string) (keyRingName, error) {
	if parent, id, ok := cutCollection(name, "keyRings"); ok {
		if loc, err := parseLocationName(parent); err == nil {
			return keyRingName{locationName: loc, KeyRingID: id}, nil
		}
	}
	return keyRingName{}, errMalformedName("key ring", name)
}

func (n keyRingName) KeyRing() string {
	return fmt.Sprintf("%s/keyRings/%s", n.Location(), n.KeyRingID)
}

func (n keyRingName) String() string {
	return n.KeyRing()
}

type cryptoKeyName struct {
	keyRingName
	CryptoKeyID string
}

func parseCryptoKeyName(name string) (cryptoKeyName, error) {
	if parent, id, ok := cutCollection(name, "cryptoKeys"); ok {
		if kr, err := parseKeyRingName(parent); err == nil {
			return cryptoKeyName{keyRingName: kr, CryptoKeyID: id}, nil
		}
	}
	return cryptoKeyName{}, errMalformedName("crypto key", name)
}

func (n cryptoKeyName) CryptoKey() string {
	return fmt.Sprintf("%s/cryptoKeys/%s", n.KeyRing(), n.CryptoKeyID)
}

func (n cryptoKeyName) String() string {
	return n.CryptoKey()
}

type cryptoKeyVersionName struct {
	cryptoKeyName
	CryptoKeyVersionID string
}

func parseCryptoKeyVersionName(name string) (cryptoKeyVersionName, error) {
	if parent, id, ok := cutCollection(name, "cryptoKeyVersions"); ok {
		if ck, err := parseCryptoKeyName(parent); err == nil {
			return cryptoKeyVersionName{cryptoKeyName: ck, CryptoKeyVersionID: id}, nil
		}
	}
	return cryptoKeyVersionName{}, errMalformedName("crypto key version", name)
}

func (n cryptoKeyVersionName) CryptoKeyVersion() string {
	return fmt.Sprintf("%s/cryptoKeyVersions/%s", n.CryptoKey(), n.CryptoKeyVersionID)
}

func (n cryptoKeyVersionName) String() string {
	return n.CryptoKeyVersion()
}
