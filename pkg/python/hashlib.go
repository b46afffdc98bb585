// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package python

import (
	"crypto/md5"  //nolint:gosec // listed for recognition, never accepted
	"crypto/sha1" //nolint:gosec // listed for recognition, never accepted
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// HashlibAlgorithmsGuaranteed is Python `hashlib.algorithms_guaranteed`
// (minus the ones with no Go stdlib equivalent).  RECORD verification only
// ever *accepts* sha256, but knowing the rest of the family lets error
// messages distinguish "known but rejected" from "garbage".
//
//nolint:gochecknoglobals // Would be 'const'.
var HashlibAlgorithmsGuaranteed = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}
