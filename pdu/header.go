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
	"fmt"
	"strings"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/tlv"
)

// Span is a byte range [Start, End) within the envelope buffer passed to WalkHeader.
type Span struct {
	Start, End int
}

// Len returns the number of bytes in the span.
func (s Span) Len() int { return s.End - s.Start }

// EncryptionInfo holds the decoded ENC-only key-wrap fields (§3 EncryptionInfo).
type EncryptionInfo struct {
	IV           []byte
	PaddingCount int
	KeySizeBits  uint16
	KeyAlgorithm byte
	WrappedKey   []byte
}

// HeaderView is the result of walking an envelope's header: every field the schema recognizes,
// plus the byte spans the signature binder and payload profiles need.
type HeaderView struct {
	Major, Minor byte
	HeaderLength int

	SignerSubject string
	SignerIssuer  string
	SignerSerial  []byte

	HashAlgorithm          HashAlgID
	SignatureModulusIndex  byte
	SignatureSpan          Span // framed SIGNATURE element: [tag byte, byte after value)

	Filename  string
	Timestamp uint32

	SignerVersion *[2]byte // trust-list only

	Encryption              *EncryptionInfo
	EncryptionHashAlgorithm HashAlgID
	EncryptionHash          []byte
}

// String renders a human-readable dump of the decoded fields, in the spirit of the "print what
// has been decoded so far" rule: callers may print a HeaderView even when WalkHeader also
// returned an error, since the view is filled in incrementally as the walk proceeds.
func (hv *HeaderView) String() string {
	if hv == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Version: %d.%d\n", hv.Major, hv.Minor)
	fmt.Fprintf(&b, "Header Length: %d\n", hv.HeaderLength)
	fmt.Fprintf(&b, "Signer: %s\n", hv.SignerSubject)
	fmt.Fprintf(&b, "Issuer: %s\n", hv.SignerIssuer)
	fmt.Fprintf(&b, "Serial Number: %x\n", hv.SignerSerial)
	fmt.Fprintf(&b, "Digest Algorithm: %s\n", hv.HashAlgorithm)
	if hv.SignerVersion != nil {
		fmt.Fprintf(&b, "Signer Version: %d.%d\n", hv.SignerVersion[0], hv.SignerVersion[1])
	}
	fmt.Fprintf(&b, "Filename: %s\n", hv.Filename)
	fmt.Fprintf(&b, "Timestamp: %d\n", hv.Timestamp)
	if hv.Encryption != nil {
		fmt.Fprintf(&b, "Encryption Key Size: %d bits\n", hv.Encryption.KeySizeBits)
		fmt.Fprintf(&b, "Encryption Padding: %d\n", hv.Encryption.PaddingCount)
		fmt.Fprintf(&b, "Encryption Hash Algorithm: %s\n", hv.EncryptionHashAlgorithm)
	}
	return b.String()
}

// readPrelude decodes the VERSION and HEADER_LENGTH elements that open every envelope and
// validates HEADER_LENGTH against buf's size and the 4-byte alignment rule. It is the common
// entry point for both WalkHeader (which goes on to require a full, signed header) and
// PeekHeaderLength (which does not).
func readPrelude(buf []byte) (hv *HeaderView, next int, err error) {
	if len(buf) < 4 {
		return nil, 0, errors.New(errors.Truncated).AppendMessage("Buffer too short to contain VERSION and HEADER_LENGTH.")
	}

	elem, _, _, next, err := tlv.DecodeNext(buf, 0)
	if err != nil {
		return nil, 0, errors.Err(err, errors.Truncated).AppendMessage("Failed to decode VERSION.")
	}
	if elem.Tag != TagVersion || len(elem.Value) != 2 {
		return nil, 0, errors.New(errors.BadTag).AppendMessage("Envelope must begin with a 2-byte VERSION element.")
	}
	hv = &HeaderView{Major: elem.Value[0], Minor: elem.Value[1]}

	elem, _, _, next, err = tlv.DecodeNext(buf, next)
	if err != nil {
		return hv, 0, errors.Err(err, errors.Truncated).AppendMessage("Failed to decode HEADER_LENGTH.")
	}
	if elem.Tag != TagHeaderLength || len(elem.Value) != 2 {
		return hv, 0, errors.New(errors.BadTag).AppendMessage("VERSION must be followed by a 2-byte HEADER_LENGTH element.")
	}
	hv.HeaderLength = int(binary.BigEndian.Uint16(elem.Value))
	if hv.HeaderLength > len(buf) {
		return hv, 0, errors.New(errors.Truncated).AppendMessage("HEADER_LENGTH exceeds the buffer size.")
	}
	if hv.HeaderLength%4 != 0 {
		return hv, 0, errors.New(errors.BadTag).AppendMessage("HEADER_LENGTH must be a multiple of 4.")
	}

	return hv, next, nil
}

// PeekHeaderLength reads only the VERSION and HEADER_LENGTH prelude and returns header_length. It
// does not require a SIGNATURE element or SignerInfo fields, unlike WalkHeader - stripping a
// payload back out needs none of that, only the byte offset the payload starts at.
func PeekHeaderLength(buf []byte) (int, error) {
	hv, _, err := readPrelude(buf)
	if err != nil {
		return 0, err
	}
	return hv.HeaderLength, nil
}

// WalkHeader asserts VERSION then HEADER_LENGTH come first, then iterates the envelope's header
// elements until offset==header_length, descending transparently into container tags.
//
// A non-nil HeaderView is returned even on error, populated with whatever was decoded before the
// failure - operators rely on this partial output for forensic use (§7).
func WalkHeader(buf []byte) (*HeaderView, error) {
	log.Debug("pdu: walking envelope header")

	hv, next, err := readPrelude(buf)
	if err != nil {
		return hv, err
	}

	if err := walkRange(buf, next, hv.HeaderLength, hv); err != nil {
		log.Error(err)
		return hv, err
	}

	if hv.SignatureSpan.End == 0 {
		return hv, errors.New(errors.MissingField).AppendMessage("Envelope header is missing a SIGNATURE element.")
	}
	if hv.SignatureSpan.End > hv.HeaderLength {
		return hv, errors.New(errors.BadTag).AppendMessage("SIGNATURE element extends past HEADER_LENGTH.")
	}
	if hv.SignerSerial == nil || hv.SignerSubject == "" {
		return hv, errors.New(errors.MissingField).AppendMessage("Envelope header is missing SIGNER_INFO fields.")
	}

	return hv, nil
}

// walkRange decodes the flat TLV sequence in buf[offset:end], recursing transparently into
// container tags. Every header-level tag number is unique across the whole grammar (§3), so a
// flat switch works regardless of which container a tag is nested under.
func walkRange(buf []byte, offset, end int, hv *HeaderView) error {
	for offset < end {
		elemStart := offset
		elem, valStart, valEnd, next, err := tlv.DecodeNext(buf, offset)
		if err != nil {
			return errors.Err(err, errors.Truncated)
		}

		switch elem.Tag {
		case TagPadding:
			// filler, nothing to record.
		case TagSignerInfo, TagSignatureInfo, TagSignatureAlgorithmInfo, TagEncryptionIVInfo, TagEncryptionKeyInfo:
			if err := walkRange(buf, valStart, valEnd, hv); err != nil {
				return err
			}
		case TagEncryptionInfo:
			if hv.Encryption == nil {
				hv.Encryption = &EncryptionInfo{}
			}
			if err := walkRange(buf, valStart, valEnd, hv); err != nil {
				return err
			}
		case TagSignerName:
			hv.SignerSubject = decodeCString(elem.Value)
		case TagIssuerName:
			hv.SignerIssuer = decodeCString(elem.Value)
		case TagSerialNumber:
			hv.SignerSerial = cloneBytes(elem.Value)
		case TagHashAlgorithm:
			if len(elem.Value) != 1 {
				return errors.New(errors.MissingField).AppendMessage("HASH_ALGORITHM must be 1 byte.")
			}
			hv.HashAlgorithm = HashAlgID(elem.Value[0])
		case TagSignatureAlgorithm:
			// Read and ignored - the signature's byte length comes from its own framed length.
		case TagSignatureModulus:
			if len(elem.Value) == 1 {
				hv.SignatureModulusIndex = elem.Value[0]
			}
		case TagSignature:
			hv.SignatureSpan = Span{elemStart, next}
		case TagFilename:
			hv.Filename = decodeCString(elem.Value)
		case TagTimestamp:
			if len(elem.Value) != 4 {
				return errors.New(errors.MissingField).AppendMessage("TIMESTAMP must be 4 bytes.")
			}
			hv.Timestamp = binary.BigEndian.Uint32(elem.Value)
		case TagSignerVersion:
			if len(elem.Value) != 2 {
				return errors.New(errors.MissingField).AppendMessage("SIGNER_VERSION must be 2 bytes.")
			}
			var v [2]byte
			copy(v[:], elem.Value)
			hv.SignerVersion = &v
		case TagEncUnknown1, TagEncUnknown2:
			// Reserved, always 0.
		case TagIV:
			if hv.Encryption != nil {
				hv.Encryption.IV = cloneBytes(elem.Value)
			}
		case TagEncryptionPadding:
			if hv.Encryption != nil && len(elem.Value) == 2 {
				hv.Encryption.PaddingCount = int(binary.BigEndian.Uint16(elem.Value))
			}
		case TagKeySize:
			if hv.Encryption != nil && len(elem.Value) == 2 {
				hv.Encryption.KeySizeBits = binary.BigEndian.Uint16(elem.Value)
			}
		case TagKeyAlgorithm:
			if hv.Encryption != nil && len(elem.Value) == 1 {
				hv.Encryption.KeyAlgorithm = elem.Value[0]
			}
		case TagKey:
			if hv.Encryption != nil {
				hv.Encryption.WrappedKey = cloneBytes(elem.Value)
			}
		case TagEncryptionHashAlgorithm:
			if len(elem.Value) == 1 {
				hv.EncryptionHashAlgorithm = HashAlgID(elem.Value[0])
			}
		case TagEncryptionHash:
			hv.EncryptionHash = cloneBytes(elem.Value)
		default:
			return errors.New(errors.UnknownTag).AppendMessage(
				fmt.Sprintf("Unknown tag 0x%02x at offset %d.", elem.Tag, elemStart))
		}

		offset = next
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// decodeCString trims the trailing NUL terminator strings carry in this wire format.
func decodeCString(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}

// encodeCString appends a trailing NUL terminator, as every string element requires.
func encodeCString(s string) []byte {
	out := make([]byte, len(s)+1)
	copy(out, s)
	return out
}
