/*
 * Copyright 2020 Guardtime, Inc.
 *
 * This file is part of the Guardtime client SDK.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES, CONDITIONS, OR OTHER LICENSES OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 * "Guardtime" and "KSI" are trademarks or registered trademarks of
 * Guardtime, Inc., and no license to trademarks is granted; Guardtime
 * reserves and retains all trademark rights.
 */

// Package hash implements the hash function identifiers (see Algorithm) used for envelope
// signature digests and ENC plaintext hashing, and the computation helpers built on top of them.
package hash

import (
	"crypto"
	"fmt"
	"hash"

	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/sipsentry/tlvenvelope/errors"
)

// Algorithm is a hash function identifier.
type Algorithm int

const (
	// SHA1 is SHA-1. Wire value 1 (pdu.HashSHA1).
	SHA1 Algorithm = 1
	// SHA2_256 is SHA-256. Wire value 2 (pdu.HashSHA256); recognized on parse, never produced on build (§6).
	SHA2_256 Algorithm = 2
	// SHA2_512 is SHA-512. Wire value 3 (pdu.HashSHA512).
	SHA2_512 Algorithm = 3

	// NA denotes an invalid/unrecognized algorithm.
	NA Algorithm = 0
)

type hashFuncInfo struct {
	cryptoID crypto.Hash
	size     int
	name     string
}

var hashInfoMap = map[Algorithm]hashFuncInfo{
	SHA1:     {crypto.SHA1, 20, "SHA1"},
	SHA2_256: {crypto.SHA256, 32, "SHA256"},
	SHA2_512: {crypto.SHA512, 64, "SHA512"},
}

// Defined reports whether a is one of the algorithms this package knows about.
func (a Algorithm) Defined() bool {
	_, ok := hashInfoMap[a]
	return ok
}

// String returns the algorithm's canonical name, or "" if unknown.
func (a Algorithm) String() string {
	if info, ok := hashInfoMap[a]; ok {
		return info.name
	}
	return ""
}

// Size returns the digest length in bytes, or -1 if unknown.
func (a Algorithm) Size() int {
	if info, ok := hashInfoMap[a]; ok {
		return info.size
	}
	return -1
}

// CryptoHash returns the standard library crypto.Hash identifier backing a, for use with
// rsa.SignPKCS1v15/VerifyPKCS1v15.
func (a Algorithm) CryptoHash() (crypto.Hash, error) {
	info, ok := hashInfoMap[a]
	if !ok || !info.cryptoID.Available() {
		return 0, errors.New(errors.UnsupportedAlgorithm).
			AppendMessage(fmt.Sprintf("Hash algorithm not supported: %d.", a))
	}
	return info.cryptoID, nil
}

// HashFunc returns a new hash.Hash for a.
func (a Algorithm) HashFunc() (hash.Hash, error) {
	ch, err := a.CryptoHash()
	if err != nil {
		return nil, err
	}
	return ch.New(), nil
}

// Sum computes the digest of data using algorithm a.
func Sum(a Algorithm, data []byte) ([]byte, error) {
	h, err := a.HashFunc()
	if err != nil {
		return nil, err
	}
	if _, err := h.Write(data); err != nil {
		return nil, errors.Err(err)
	}
	return h.Sum(nil), nil
}
