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

// Package sgn implements the opaque payload profile: a signed envelope whose payload is an
// uninterpreted byte blob, typically device firmware.
package sgn

import (
	"crypto/rsa"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/sipsentry/tlvenvelope/sigbind"
)

// BuildSpec describes an SGN envelope to assemble.
type BuildSpec struct {
	SignerSubject string
	SignerIssuer  string
	SignerSerial  []byte
	SignerKey     *rsa.PrivateKey

	HashAlgorithm pdu.HashAlgID
	Filename      string
	Timestamp     uint32

	Payload []byte
}

// Envelope is a parsed SGN file: its decoded header plus the raw payload bytes.
type Envelope struct {
	Header  *pdu.HeaderView
	Payload []byte
}

// Build assembles, signs and returns the complete SGN file bytes.
func Build(spec BuildSpec) ([]byte, error) {
	log.Debug("sgn: building opaque envelope")

	headerSpec := pdu.HeaderSpec{
		Major: 1, Minor: 0,
		SignerSubject: spec.SignerSubject,
		SignerIssuer:  spec.SignerIssuer,
		SignerSerial:  spec.SignerSerial,
		HashAlgorithm: spec.HashAlgorithm,
		SignatureLen:  spec.SignerKey.Size(),
		Filename:      spec.Filename,
		Timestamp:     spec.Timestamp,
	}

	header, sigInsertOffset, _, err := pdu.AssembleHeader(headerSpec)
	if err != nil {
		return nil, err
	}

	preSign := append(append([]byte{}, header...), spec.Payload...)

	sig, err := sigbind.Sign(preSign, spec.SignerKey, spec.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	file, err := sigbind.SpliceIn(preSign, sig, sigInsertOffset)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Parse walks fileBytes' header and splits off the payload. It does not verify the signature -
// callers that need that should call Verify on the result.
func Parse(fileBytes []byte) (*Envelope, error) {
	log.Debug("sgn: parsing opaque envelope")

	hv, err := pdu.WalkHeader(fileBytes)
	if err != nil {
		return &Envelope{Header: hv}, err
	}
	if hv.HeaderLength > len(fileBytes) {
		return &Envelope{Header: hv}, errors.New(errors.Truncated).
			AppendMessage("HEADER_LENGTH exceeds the file size.")
	}
	return &Envelope{Header: hv, Payload: fileBytes[hv.HeaderLength:]}, nil
}

// Verify extracts the signature from fileBytes and checks it against pub. env.Header must have
// come from parsing the same fileBytes.
func Verify(fileBytes []byte, env *Envelope, pub *rsa.PublicKey) error {
	if env == nil || env.Header == nil {
		return errors.New(errors.InvalidArgument)
	}
	without, sig, err := sigbind.Extract(fileBytes, env.Header.SignatureSpan)
	if err != nil {
		return err
	}
	return sigbind.Verify(without, sig, pub, env.Header.HashAlgorithm)
}

// Strip recovers the raw payload without touching keys or the signature: removal is a pure
// header-length-driven slice, so it works on a SIGN file that isn't signed at all, as long as it
// has a valid VERSION/HEADER_LENGTH prelude.
func Strip(fileBytes []byte) ([]byte, error) {
	headerLength, err := pdu.PeekHeaderLength(fileBytes)
	if err != nil {
		return nil, err
	}
	return fileBytes[headerLength:], nil
}
