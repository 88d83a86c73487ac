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

// Package pdu implements the envelope schema: the fixed tag numbering, nesting, and ordering
// rules shared by every container shape (SGN, trust-list, ENC) built on the tlv codec.
//
// pdu is the single source of truth for tag numbering - other packages never hand-code a tag
// byte, they call WalkHeader/AssembleHeader and work with the resulting HeaderView/HeaderSpec.
package pdu

import "github.com/sipsentry/tlvenvelope/tlv"

// Header-level tag numbers, per the envelope grammar.
const (
	TagVersion               uint8 = 1
	TagHeaderLength          uint8 = 2
	TagSignerInfo            uint8 = 3
	TagSignerName            uint8 = 4
	TagSerialNumber          uint8 = 5
	TagIssuerName            uint8 = 6
	TagSignatureInfo         uint8 = 7
	TagHashAlgorithm         uint8 = 8
	TagSignatureAlgorithmInfo uint8 = 9
	TagSignatureAlgorithm    uint8 = 10
	TagSignatureModulus      uint8 = 11
	TagSignature             uint8 = 12
	TagPadding               uint8 = tlv.Padding // 13, no length framing
	TagFilename              uint8 = 14
	TagTimestamp             uint8 = 15
	TagEncryptionInfo        uint8 = 16
	TagEncryptionIVInfo      uint8 = 17
	TagEncUnknown1           uint8 = 18
	TagIV                    uint8 = 19
	TagEncryptionPadding     uint8 = 20
	TagEncryptionKeyInfo     uint8 = 21
	TagEncUnknown2           uint8 = 22
	TagKeySize               uint8 = 23
	TagKeyAlgorithm          uint8 = 24
	TagKey                   uint8 = 25
	TagEncryptionHashAlgorithm uint8 = 26
	TagEncryptionHash        uint8 = 27
	TagSignerVersion         uint8 = 28
)

// HashAlgID is the one-byte hash algorithm identifier carried in HASH_ALGORITHM /
// ENCRYPTION_HASH_ALGORITHM elements.
type HashAlgID uint8

// Hash algorithm identifiers. HashSHA256 is recognized on parse but never produced on build (§6).
const (
	HashSHA1   HashAlgID = 1
	HashSHA256 HashAlgID = 2
	HashSHA512 HashAlgID = 3
)

// String implements Stringer.
func (h HashAlgID) String() string {
	switch h {
	case HashSHA1:
		return "SHA1"
	case HashSHA256:
		return "SHA256"
	case HashSHA512:
		return "SHA512"
	default:
		return "UNKNOWN"
	}
}

// signatureModulusLengths is the SIGNATURE_MODULUS lookup table: index -> signature byte length.
var signatureModulusLengths = [4]int{64, 128, 256, 512}
