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

package hash

import (
	"hash"

	"github.com/sipsentry/tlvenvelope/errors"
)

// DataHasher is the data hash computation object, for callers streaming payload bytes (e.g. a
// large SGN body) instead of hashing a single buffer via the package-level Sum function.
type DataHasher struct {
	algo Algorithm
	hsr  hash.Hash
}

// New returns a new hasher for the given hash algorithm.
// Returns an error if the hash function is not linked into the binary.
func (a Algorithm) New() (*DataHasher, error) {
	hFunc, err := a.HashFunc()
	if err != nil {
		return nil, err
	}
	return &DataHasher{algo: a, hsr: hFunc}, nil
}

// Write implements io.Writer, adding more data to the running hash.
// In case of an InvalidArgument error (e.g. h is nil), the function returns the non-standard
// -1 as the count of bytes written.
func (h *DataHasher) Write(p []byte) (int, error) {
	if h == nil || h.hsr == nil {
		return -1, errors.New(errors.InvalidArgument).AppendMessage("DataHasher is not initialized.")
	}
	n, err := h.hsr.Write(p)
	if err != nil {
		return n, errors.New(errors.ExternalError).SetExtError(err)
	}
	return n, nil
}

// Sum returns the digest of everything written so far. It does not reset the underlying hash
// state, so Write may be called again to extend the digest.
func (h *DataHasher) Sum() ([]byte, error) {
	if h == nil || h.hsr == nil {
		return nil, errors.New(errors.InvalidArgument).AppendMessage("DataHasher is not initialized.")
	}
	return h.hsr.Sum(nil), nil
}

// Reset resets the hasher to its initial state.
func (h *DataHasher) Reset() {
	if h == nil || h.hsr == nil {
		return
	}
	h.hsr.Reset()
}

// Algorithm returns the hasher's bound Algorithm, or NA for a nil receiver.
func (h *DataHasher) Algorithm() Algorithm {
	if h == nil {
		return NA
	}
	return h.algo
}

// Size returns the resulting digest length in bytes. In case of an error, a negative value is
// returned.
func (h *DataHasher) Size() int {
	if h == nil || h.hsr == nil {
		return -1
	}
	return h.algo.Size()
}

// BlockSize returns the hash's underlying block size. Write must be able to accept any amount of
// data, but it may operate more efficiently if all writes are a multiple of the block size.
// In case of an error, a negative value is returned.
func (h *DataHasher) BlockSize() int {
	if h == nil || h.hsr == nil {
		return -1
	}
	return h.hsr.BlockSize()
}
