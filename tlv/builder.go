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

// Builder accumulates a flat sequence of encoded TLV elements. Unlike a container tag's nested
// body, which is only known once every nested element has been emitted, Builder appends forward
// and is used wherever an element's own length can be computed up front.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Append encodes tag/value and appends it to the builder's buffer.
func (b *Builder) Append(tag uint8, value []byte) error {
	enc, err := Encode(tag, value)
	if err != nil {
		return err
	}
	b.buf = append(b.buf, enc...)
	return nil
}

// AppendRaw appends already-encoded bytes verbatim (used to splice in a nested container's
// pre-built body under its own tag, or to copy a reserved-but-not-yet-known-length span).
func (b *Builder) AppendRaw(raw []byte) {
	b.buf = append(b.buf, raw...)
}

// AppendPadding appends n Padding bytes.
func (b *Builder) AppendPadding(n int) {
	for i := 0; i < n; i++ {
		b.buf = append(b.buf, Padding)
	}
}

// Len returns the number of bytes accumulated so far.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Bytes returns the accumulated buffer. The returned slice is owned by the Builder; callers that
// need to keep mutating the Builder afterwards should copy it.
func (b *Builder) Bytes() []byte {
	return b.buf
}
