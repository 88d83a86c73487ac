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

package errors

// ErrorCode represents the error code value assigned to an EnvelopeError.
type ErrorCode uint16

const (
	// NoError represents a successful result.
	NoError = ErrorCode(0)

	// Io is set when a file open/read/write operation fails (permission, missing file, not-a-file).
	Io = ErrorCode(0x100)
	// Truncated is set when a TLV walk runs past the end of the buffer.
	Truncated = ErrorCode(0x101)
	// BadTag is set when an expected tag at a given offset does not match what was read.
	BadTag = ErrorCode(0x102)
	// UnknownTag is set when a tag outside the schema is encountered while walking a header.
	UnknownTag = ErrorCode(0x103)
	// UnsupportedAlgorithm is set when a hash or signature-modulus index is outside the supported set.
	UnsupportedAlgorithm = ErrorCode(0x104)
	// UnsupportedKeyType is set when a public or private key is neither RSA nor (where permitted) EC.
	UnsupportedKeyType = ErrorCode(0x105)
	// MissingField is set when a mandatory header or record field is absent.
	MissingField = ErrorCode(0x106)
	// InvalidCertificate is set when a PEM block did not yield a usable X.509 certificate.
	InvalidCertificate = ErrorCode(0x107)
	// InvalidSignature is set when cryptographic signature verification fails.
	InvalidSignature = ErrorCode(0x108)
	// HashMismatch is set when decrypted plaintext's hash does not match the declared ENCRYPTION_HASH.
	HashMismatch = ErrorCode(0x109)
	// LengthOverflow is set when a framed value would exceed 65535 bytes.
	LengthOverflow = ErrorCode(0x10a)
	// InvalidArgument is set for invalid function input (nil pointer, empty slice where one is required).
	InvalidArgument = ErrorCode(0x10b)
	// InvalidState is set when an object is used in an invalid state (e.g. value already set).
	InvalidState = ErrorCode(0x10c)

	// ExternalError is set when an external error (e.g. from the standard library) is wrapped automatically.
	ExternalError = ErrorCode(0x200)

	// NotImplemented indicates an unreachable/invalid API state.
	NotImplemented = ErrorCode(0xffff)
)

var errStrings = map[ErrorCode]string{
	NoError: "No Error",

	Io:                   "IO Error",
	Truncated:             "Truncated TLV stream",
	BadTag:                "Unexpected TLV tag",
	UnknownTag:            "Unknown TLV tag",
	UnsupportedAlgorithm:  "Unsupported algorithm",
	UnsupportedKeyType:    "Unsupported key type",
	MissingField:          "Missing mandatory field",
	InvalidCertificate:    "Invalid certificate",
	InvalidSignature:      "Invalid signature",
	HashMismatch:          "Hash mismatch",
	LengthOverflow:        "Value exceeds maximum TLV length",
	InvalidArgument:       "Invalid argument",
	InvalidState:          "Invalid state",
	ExternalError:         "Common external error from 3rd party API",

	NotImplemented: "Not implemented",
}

func (c ErrorCode) String() string {
	return errStrings[c]
}
