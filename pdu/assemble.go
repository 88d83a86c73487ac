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

package pdu

import (
	"encoding/binary"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/tlv"
)

// HeaderSpec describes the header an envelope build should assemble. SignerVersion and
// Encryption are profile-specific: the former is trust-list only, the latter ENC only.
type HeaderSpec struct {
	Major, Minor byte

	SignerSubject string
	SignerIssuer  string
	SignerSerial  []byte

	HashAlgorithm HashAlgID
	SignatureLen  int // resolved signature byte length: 256 or 512 (64 and 128 are refused).

	Filename  string
	Timestamp uint32

	SignerVersion *[2]byte

	Encryption              *EncryptionInfo
	EncryptionHashAlgorithm HashAlgID
	EncryptionHash          []byte
}

// minBuildSignatureLen is the shortest signature length AssembleHeader will build with. The
// SIGNATURE_MODULUS table also has entries for 512- and 1024-bit keys, but those are undersized
// for production signing and are refused at build time; WalkHeader still decodes them on parse.
const minBuildSignatureLen = 256

// modulusIndex maps a resolved signature byte length to its SIGNATURE_MODULUS wire value.
func modulusIndex(sigLen int) (byte, error) {
	if sigLen < minBuildSignatureLen {
		return 0, errors.New(errors.UnsupportedAlgorithm).AppendMessage(
			"Signature length is below the 2048-bit RSA floor; only 2048/4096-class RSA keys are supported.")
	}
	for i, l := range signatureModulusLengths {
		if l == sigLen {
			return byte(i), nil
		}
	}
	return 0, errors.New(errors.UnsupportedAlgorithm).AppendMessage(
		"Signature length has no SIGNATURE_MODULUS encoding; only 2048/4096-class RSA keys are supported.")
}

// AssembleHeader emits every header element except SIGNATURE. At the point SIGNATURE would
// appear it records sigInsertOffset (an index into the returned buf); the caller signs buf (with
// the payload appended) and later splices the framed signature in at that offset (see sigbind).
//
// HEADER_LENGTH's value is back-patched to count the signature's framed bytes even though they
// are not present in buf - this is what keeps the signed and spliced byte images' header length
// identical.
func AssembleHeader(spec HeaderSpec) (buf []byte, sigInsertOffset int, headerLength int, err error) {
	log.Debug("pdu: assembling envelope header")

	if spec.HashAlgorithm == HashSHA256 {
		return nil, 0, 0, errors.New(errors.UnsupportedAlgorithm).AppendMessage(
			"SHA-256 is recognized on parse but not produced; build with SHA-1 or SHA-512.")
	}

	modIdx, err := modulusIndex(spec.SignatureLen)
	if err != nil {
		return nil, 0, 0, err
	}

	b := tlv.NewBuilder()
	if err := b.Append(TagVersion, []byte{spec.Major, spec.Minor}); err != nil {
		return nil, 0, 0, err
	}
	if err := b.Append(TagHeaderLength, []byte{0, 0}); err != nil {
		return nil, 0, 0, err
	}
	headerLengthFieldOffset := b.Len() - 2

	signerInfo := tlv.NewBuilder()
	if err := signerInfo.Append(TagSignerName, encodeCString(spec.SignerSubject)); err != nil {
		return nil, 0, 0, err
	}
	if err := signerInfo.Append(TagIssuerName, encodeCString(spec.SignerIssuer)); err != nil {
		return nil, 0, 0, err
	}
	if err := signerInfo.Append(TagSerialNumber, spec.SignerSerial); err != nil {
		return nil, 0, 0, err
	}
	if err := b.Append(TagSignerInfo, signerInfo.Bytes()); err != nil {
		return nil, 0, 0, err
	}

	sigAlgInfo := tlv.NewBuilder()
	if err := sigAlgInfo.Append(TagSignatureAlgorithm, []byte{0}); err != nil {
		return nil, 0, 0, err
	}
	if err := sigAlgInfo.Append(TagSignatureModulus, []byte{modIdx}); err != nil {
		return nil, 0, 0, err
	}
	sigInfo := tlv.NewBuilder()
	if err := sigInfo.Append(TagHashAlgorithm, []byte{byte(spec.HashAlgorithm)}); err != nil {
		return nil, 0, 0, err
	}
	if err := sigInfo.Append(TagSignatureAlgorithmInfo, sigAlgInfo.Bytes()); err != nil {
		return nil, 0, 0, err
	}
	if err := b.Append(TagSignatureInfo, sigInfo.Bytes()); err != nil {
		return nil, 0, 0, err
	}

	// The SIGNATURE element itself is never written here - this offset is the hole.
	sigInsertOffset = b.Len()

	if err := b.Append(TagFilename, encodeCString(spec.Filename)); err != nil {
		return nil, 0, 0, err
	}
	ts := make([]byte, 4)
	binary.BigEndian.PutUint32(ts, spec.Timestamp)
	if err := b.Append(TagTimestamp, ts); err != nil {
		return nil, 0, 0, err
	}

	if spec.SignerVersion != nil {
		if err := b.Append(TagSignerVersion, spec.SignerVersion[:]); err != nil {
			return nil, 0, 0, err
		}
	}

	if spec.Encryption != nil {
		ivInfo := tlv.NewBuilder()
		if err := ivInfo.Append(TagEncUnknown1, []byte{0}); err != nil {
			return nil, 0, 0, err
		}
		if err := ivInfo.Append(TagIV, spec.Encryption.IV); err != nil {
			return nil, 0, 0, err
		}
		padCount := make([]byte, 2)
		binary.BigEndian.PutUint16(padCount, uint16(spec.Encryption.PaddingCount))
		if err := ivInfo.Append(TagEncryptionPadding, padCount); err != nil {
			return nil, 0, 0, err
		}

		keyInfo := tlv.NewBuilder()
		if err := keyInfo.Append(TagEncUnknown2, []byte{0}); err != nil {
			return nil, 0, 0, err
		}
		keySize := make([]byte, 2)
		binary.BigEndian.PutUint16(keySize, spec.Encryption.KeySizeBits)
		if err := keyInfo.Append(TagKeySize, keySize); err != nil {
			return nil, 0, 0, err
		}
		if err := keyInfo.Append(TagKeyAlgorithm, []byte{spec.Encryption.KeyAlgorithm}); err != nil {
			return nil, 0, 0, err
		}
		if err := keyInfo.Append(TagKey, spec.Encryption.WrappedKey); err != nil {
			return nil, 0, 0, err
		}

		encInfo := tlv.NewBuilder()
		if err := encInfo.Append(TagEncryptionIVInfo, ivInfo.Bytes()); err != nil {
			return nil, 0, 0, err
		}
		if err := encInfo.Append(TagEncryptionKeyInfo, keyInfo.Bytes()); err != nil {
			return nil, 0, 0, err
		}
		if err := b.Append(TagEncryptionInfo, encInfo.Bytes()); err != nil {
			return nil, 0, 0, err
		}
		if err := b.Append(TagEncryptionHashAlgorithm, []byte{byte(spec.EncryptionHashAlgorithm)}); err != nil {
			return nil, 0, 0, err
		}
		if err := b.Append(TagEncryptionHash, spec.EncryptionHash); err != nil {
			return nil, 0, 0, err
		}
	}

	pad := tlv.PadCount(b.Len() + 3 + spec.SignatureLen)
	b.AppendPadding(pad)

	headerLength = b.Len() + 3 + spec.SignatureLen
	buf = b.Bytes()
	binary.BigEndian.PutUint16(buf[headerLengthFieldOffset:headerLengthFieldOffset+2], uint16(headerLength))

	return buf, sigInsertOffset, headerLength, nil
}
