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

// Package tlv implements the fixed-width tag-length-value codec shared by every container shape
// (SGN, trust-list, ENC) built on top of it.
//
// An element is a single byte tag, followed - with one structural exception - by a big-endian
// 16bit length and that many value bytes. The exception is the Padding tag, which carries no
// length field at all: it is a single filler byte used to round a header out to a 4 byte
// boundary. Container tags (see the pdu package) do not get special treatment here; a container's
// value is simply the concatenation of its nested elements' encodings, and the walker that
// understands nesting lives one layer up, in pdu.
package tlv

import (
	"encoding/binary"

	"github.com/sipsentry/tlvenvelope/errors"
)

// Padding is the only tag with no length framing: a bare 0x0D filler byte.
const Padding uint8 = 13

// MaxValueLen is the largest value a single element can carry (a 16bit length field).
const MaxValueLen = 0xffff

// Element is a decoded tag-length-value unit. Tag and Value are the only fields callers of
// DecodeNext need; Encode accepts the same pair.
type Element struct {
	Tag   uint8
	Value []byte
}

// Encode returns the wire encoding of a single TLV element.
//
// Padding encodes to the lone byte 0x0D regardless of Value. Every other tag encodes to
// tag(1) || length:u16be || value, and fails with LengthOverflow if len(value) > 0xffff.
func Encode(tag uint8, value []byte) ([]byte, error) {
	if tag == Padding {
		return []byte{Padding}, nil
	}
	if len(value) > MaxValueLen {
		return nil, errors.New(errors.LengthOverflow).AppendMessage("TLV value exceeds 65535 bytes.")
	}

	buf := make([]byte, 3+len(value))
	buf[0] = tag
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(value)))
	copy(buf[3:], value)
	return buf, nil
}

// DecodeNext reads one element starting at offset in buf.
//
// It returns the decoded element's tag, the byte range of its value within buf (valueStart,
// valueEnd - equal for Padding, which carries no value), and the offset at which the next
// element begins. Truncated is returned if fewer bytes remain than the header or declared
// length require.
func DecodeNext(buf []byte, offset int) (elem Element, valueStart, valueEnd, next int, err error) {
	if offset < 0 || offset >= len(buf) {
		return Element{}, 0, 0, 0, errors.New(errors.Truncated).AppendMessage("No bytes remain to decode a TLV tag.")
	}

	tag := buf[offset]
	if tag == Padding {
		return Element{Tag: Padding}, offset + 1, offset + 1, offset + 1, nil
	}

	if offset+3 > len(buf) {
		return Element{}, 0, 0, 0, errors.New(errors.Truncated).AppendMessage("Not enough bytes for TLV length field.")
	}
	length := int(binary.BigEndian.Uint16(buf[offset+1 : offset+3]))
	valStart := offset + 3
	valEnd := valStart + length
	if valEnd > len(buf) {
		return Element{}, 0, 0, 0, errors.New(errors.Truncated).AppendMessage("Not enough bytes for TLV value.")
	}

	return Element{Tag: tag, Value: buf[valStart:valEnd]}, valStart, valEnd, valEnd, nil
}

// PadCount returns how many Padding bytes must be appended so that length+n is a multiple of 4.
// The result is always in [0, 3].
func PadCount(length int) int {
	return (4 - length%4) % 4
}
