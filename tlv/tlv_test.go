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

package tlv

import (
	"bytes"
	"testing"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc, err := Encode(0x01, []byte{0x00, 0x02})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x00, 0x02, 0x00, 0x02}, enc)

	elem, valStart, valEnd, next, err := DecodeNext(enc, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0x01), elem.Tag)
	require.Equal(t, []byte{0x00, 0x02}, elem.Value)
	require.Equal(t, 3, valStart)
	require.Equal(t, 5, valEnd)
	require.Equal(t, 5, next)
}

func TestEncodeEmptyValue(t *testing.T) {
	enc, err := Encode(0x0e, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x0e, 0x00, 0x00}, enc)
}

func TestEncodeLengthOverflow(t *testing.T) {
	_, err := Encode(0x01, make([]byte, MaxValueLen+1))
	require.Error(t, err)
	require.Equal(t, errors.LengthOverflow, err.(*errors.EnvelopeError).Code())
}

func TestDecodePadding(t *testing.T) {
	buf := []byte{Padding, 0x01, 0x00, 0x01, 0xff}
	elem, valStart, valEnd, next, err := DecodeNext(buf, 0)
	require.NoError(t, err)
	require.Equal(t, Padding, elem.Tag)
	require.Equal(t, 1, valStart)
	require.Equal(t, 1, valEnd)
	require.Equal(t, 1, next)

	elem2, _, _, next2, err := DecodeNext(buf, next)
	require.NoError(t, err)
	require.Equal(t, uint8(0x01), elem2.Tag)
	require.Equal(t, []byte{0xff}, elem2.Value)
	require.Equal(t, 5, next2)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	_, _, _, _, err := DecodeNext([]byte{0x01, 0x00}, 0)
	require.Error(t, err)
	require.Equal(t, errors.Truncated, err.(*errors.EnvelopeError).Code())
}

func TestDecodeTruncatedValue(t *testing.T) {
	_, _, _, _, err := DecodeNext([]byte{0x01, 0x00, 0x05, 0x01, 0x02}, 0)
	require.Error(t, err)
	require.Equal(t, errors.Truncated, err.(*errors.EnvelopeError).Code())
}

func TestDecodeOffsetOutOfRange(t *testing.T) {
	_, _, _, _, err := DecodeNext([]byte{0x01, 0x00, 0x00}, 3)
	require.Error(t, err)
}

func TestPadCount(t *testing.T) {
	cases := map[int]int{0: 0, 1: 3, 2: 2, 3: 1, 4: 0, 5: 3, 7: 1, 8: 0}
	for length, want := range cases {
		require.Equal(t, want, PadCount(length), "length=%d", length)
		require.Equal(t, 0, (length+PadCount(length))%4)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Append(0x01, []byte{0x00, 0x02}))
	b.AppendPadding(2)
	b.AppendRaw([]byte{0xaa})

	want := []byte{0x01, 0x00, 0x02, 0x00, 0x02, Padding, Padding, 0xaa}
	require.True(t, bytes.Equal(want, b.Bytes()))
	require.Equal(t, len(want), b.Len())
}
