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

// Package sigbind implements the signature binder: the rule that computes a signature over an
// envelope as if the SIGNATURE element were absent, then splices it into a reserved position so
// that removing it again recovers the exact byte image that was signed.
//
// The central invariant is sign(buf \ signature_span) == signature. Every operation in this
// package is built to preserve that invariant exactly - callers must never hand-construct the
// framed SIGNATURE bytes themselves.
package sigbind

import (
	"crypto/rsa"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/hash"
	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/sipsentry/tlvenvelope/tlv"
)

// Sign computes the PKCS#1 v1.5 signature over buf using key and the given hash algorithm. buf
// must already have the SIGNATURE element excluded - i.e. it is the pre-signing byte image, not
// the final file.
func Sign(buf []byte, key *rsa.PrivateKey, algo pdu.HashAlgID) ([]byte, error) {
	log.Debug("sigbind: computing envelope signature")

	h, err := hashAlgForID(algo)
	if err != nil {
		return nil, err
	}
	cryptoHash, err := h.CryptoHash()
	if err != nil {
		return nil, err
	}
	digest, err := hash.Sum(h, buf)
	if err != nil {
		return nil, errors.Err(err)
	}

	sig, err := rsa.SignPKCS1v15(nil, key, cryptoHash, digest)
	if err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err).
			AppendMessage("Failed to compute PKCS#1 v1.5 signature.")
	}
	return sig, nil
}

// SpliceIn inserts the framed SIGNATURE element (tag, big-endian u16 length, signature bytes)
// into buf at insertOffset. The result is the byte image that gets written to disk.
func SpliceIn(buf, signature []byte, insertOffset int) ([]byte, error) {
	if insertOffset < 0 || insertOffset > len(buf) {
		return nil, errors.New(errors.InvalidArgument).AppendMessage("Signature insert offset is out of range.")
	}
	framed, err := tlv.Encode(pdu.TagSignature, signature)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(buf)+len(framed))
	out = append(out, buf[:insertOffset]...)
	out = append(out, framed...)
	out = append(out, buf[insertOffset:]...)
	return out, nil
}

// Extract splits fileBytes into the pre-signing byte image and the raw signature bytes, using
// the SIGNATURE element's span as reported by pdu.WalkHeader. The returned buffer is
// byte-identical to what Sign originally consumed.
func Extract(fileBytes []byte, signatureSpan pdu.Span) (bufWithoutSignature, signature []byte, err error) {
	if signatureSpan.Start < 0 || signatureSpan.End > len(fileBytes) || signatureSpan.Start > signatureSpan.End {
		return nil, nil, errors.New(errors.Truncated).AppendMessage("SIGNATURE span falls outside the envelope buffer.")
	}

	elem, valStart, valEnd, next, err := tlv.DecodeNext(fileBytes, signatureSpan.Start)
	if err != nil {
		return nil, nil, errors.Err(err, errors.Truncated).AppendMessage("Failed to decode SIGNATURE element.")
	}
	if elem.Tag != pdu.TagSignature || next != signatureSpan.End {
		return nil, nil, errors.New(errors.BadTag).AppendMessage("SIGNATURE span does not match a decoded SIGNATURE element.")
	}

	signature = append([]byte{}, fileBytes[valStart:valEnd]...)

	without := make([]byte, 0, len(fileBytes)-signatureSpan.Len())
	without = append(without, fileBytes[:signatureSpan.Start]...)
	without = append(without, fileBytes[signatureSpan.End:]...)
	return without, signature, nil
}

// Verify checks signature against bufWithoutSignature using pub and algo.
func Verify(bufWithoutSignature, signature []byte, pub *rsa.PublicKey, algo pdu.HashAlgID) error {
	log.Debug("sigbind: verifying envelope signature")

	h, err := hashAlgForID(algo)
	if err != nil {
		return err
	}
	cryptoHash, err := h.CryptoHash()
	if err != nil {
		return err
	}
	digest, err := hash.Sum(h, bufWithoutSignature)
	if err != nil {
		return errors.Err(err)
	}

	if err := rsa.VerifyPKCS1v15(pub, cryptoHash, digest, signature); err != nil {
		log.Warning("sigbind: signature verification failed")
		return errors.New(errors.InvalidSignature).SetExtError(err).
			AppendMessage("Envelope signature does not verify against the signer's public key.")
	}
	return nil
}

func hashAlgForID(algo pdu.HashAlgID) (hash.Algorithm, error) {
	switch algo {
	case pdu.HashSHA1:
		return hash.SHA1, nil
	case pdu.HashSHA256:
		return hash.SHA2_256, nil
	case pdu.HashSHA512:
		return hash.SHA2_512, nil
	default:
		return hash.NA, errors.New(errors.UnsupportedAlgorithm).
			AppendMessage("Unrecognized HASH_ALGORITHM value.")
	}
}
