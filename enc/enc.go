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

// Package enc implements the encrypted payload profile: AES-128-CBC encrypted device
// configuration, an RSA-wrapped content key, and the companion pointer envelope that points a
// device at its encrypted configuration file.
package enc

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"

	"github.com/google/uuid"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/hash"
	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/sipsentry/tlvenvelope/pki"
	"github.com/sipsentry/tlvenvelope/sigbind"
)

const (
	aesKeySizeBits = 128
	aesKeyAlgoAES  = byte(1)
	aesBlockSize   = 16
	paddingByte    = 0x0d
)

// BuildSpec describes an ENC envelope to assemble.
type BuildSpec struct {
	SignerSubject string
	SignerIssuer  string
	SignerSerial  []byte
	SignerKey     *rsa.PrivateKey

	HashAlgorithm           pdu.HashAlgID
	EncryptionHashAlgorithm pdu.HashAlgID

	Filename  string
	Timestamp uint32

	RecipientCert *x509.Certificate // the device certificate the content key is wrapped under
	PlaintextXML  []byte
}

// Envelope is a parsed ENC file: its decoded header plus the raw ciphertext bytes.
type Envelope struct {
	Header     *pdu.HeaderView
	Ciphertext []byte
}

// Build pads, encrypts and signs an ENC envelope around spec.PlaintextXML. It returns the
// complete file bytes; the pointer envelope is a separate artifact - see BuildPointerXML.
func Build(spec BuildSpec) ([]byte, error) {
	log.Debug("enc: building encrypted envelope")

	recipientPub, ok := spec.RecipientCert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New(errors.UnsupportedKeyType).
			AppendMessage("Recipient certificate does not carry an RSA public key.")
	}

	plainHash, err := hash.Sum(hashAlgForID(spec.EncryptionHashAlgorithm), spec.PlaintextXML)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, aesBlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err).AppendMessage("Failed to generate IV.")
	}
	aesKey := make([]byte, aesBlockSize)
	if _, err := rand.Read(aesKey); err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err).AppendMessage("Failed to generate AES key.")
	}

	padded, padCount := pad(spec.PlaintextXML)
	ciphertext, err := pki.AESCBCEncrypt(aesKey, iv, padded)
	if err != nil {
		return nil, err
	}

	wrappedKey, err := pki.RSAWrapKeyPKCS1v15(recipientPub, aesKey)
	if err != nil {
		return nil, err
	}

	headerSpec := pdu.HeaderSpec{
		Major: 1, Minor: 0,
		SignerSubject: spec.SignerSubject,
		SignerIssuer:  spec.SignerIssuer,
		SignerSerial:  spec.SignerSerial,
		HashAlgorithm: spec.HashAlgorithm,
		SignatureLen:  spec.SignerKey.Size(),
		Filename:      spec.Filename,
		Timestamp:     spec.Timestamp,
		Encryption: &pdu.EncryptionInfo{
			IV:           iv,
			PaddingCount: padCount,
			KeySizeBits:  aesKeySizeBits,
			KeyAlgorithm: aesKeyAlgoAES,
			WrappedKey:   wrappedKey,
		},
		EncryptionHashAlgorithm: spec.EncryptionHashAlgorithm,
		EncryptionHash:          plainHash,
	}

	header, sigInsertOffset, _, err := pdu.AssembleHeader(headerSpec)
	if err != nil {
		return nil, err
	}

	preSign := append(append([]byte{}, header...), ciphertext...)
	sig, err := sigbind.Sign(preSign, spec.SignerKey, spec.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	return sigbind.SpliceIn(preSign, sig, sigInsertOffset)
}

// BuildWithPointer builds the encrypted envelope and its companion pointer envelope together,
// the pair the ENC profile always ships as (§4.4.3 step 9). configID is an additive correlation
// id carried in the pointer XML; pass uuid.Nil to omit it.
func BuildWithPointer(spec BuildSpec, configID uuid.UUID) (encFile, pointerFile []byte, err error) {
	encFile, err = Build(spec)
	if err != nil {
		return nil, nil, err
	}
	pointerFile, err = BuildPointerEnvelope(spec, configID)
	if err != nil {
		return nil, nil, err
	}
	return encFile, pointerFile, nil
}

// pad right-pads data with 0x0D bytes so its length becomes a multiple of the AES block size.
// The count is always between 1 and the block size inclusive, even when len(data) is already
// block-aligned - there must be a distinguishable padding tail to strip on decrypt.
func pad(data []byte) (padded []byte, count int) {
	count = aesBlockSize - (len(data) % aesBlockSize)
	padded = make([]byte, len(data)+count)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = paddingByte
	}
	return padded, count
}

// Parse walks fileBytes' header and splits off the ciphertext.
func Parse(fileBytes []byte) (*Envelope, error) {
	log.Debug("enc: parsing encrypted envelope")

	hv, err := pdu.WalkHeader(fileBytes)
	if err != nil {
		return &Envelope{Header: hv}, err
	}
	if hv.Encryption == nil {
		return &Envelope{Header: hv}, errors.New(errors.MissingField).
			AppendMessage("Envelope header has no EncryptionInfo.")
	}
	if hv.HeaderLength > len(fileBytes) {
		return &Envelope{Header: hv}, errors.New(errors.Truncated).
			AppendMessage("HEADER_LENGTH exceeds the file size.")
	}
	return &Envelope{Header: hv, Ciphertext: fileBytes[hv.HeaderLength:]}, nil
}

// Verify extracts the signature from fileBytes and checks it against pub.
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

// Decrypt unwraps the AES key with recipientKey, decrypts the ciphertext, strips the declared
// padding count and asserts the recovered plaintext hashes to the declared ENCRYPTION_HASH.
func Decrypt(env *Envelope, recipientKey *rsa.PrivateKey) ([]byte, error) {
	if env == nil || env.Header == nil || env.Header.Encryption == nil {
		return nil, errors.New(errors.InvalidArgument)
	}
	enc := env.Header.Encryption

	aesKey, err := pki.RSAUnwrapKeyPKCS1v15(recipientKey, enc.WrappedKey)
	if err != nil {
		return nil, err
	}

	padded, err := pki.AESCBCDecrypt(aesKey, enc.IV, env.Ciphertext)
	if err != nil {
		return nil, err
	}

	if enc.PaddingCount <= 0 || enc.PaddingCount > len(padded) {
		return nil, errors.New(errors.LengthOverflow).
			AppendMessage("Declared ENCRYPTION_PADDING count is out of range for the decrypted payload.")
	}
	plaintext := padded[:len(padded)-enc.PaddingCount]

	algo := hashAlgForID(env.Header.EncryptionHashAlgorithm)
	gotHash, err := hash.Sum(algo, plaintext)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(gotHash, env.Header.EncryptionHash) {
		return nil, errors.New(errors.HashMismatch).
			AppendMessage("Decrypted plaintext does not hash to the declared ENCRYPTION_HASH.")
	}

	return plaintext, nil
}

func hashAlgForID(algo pdu.HashAlgID) hash.Algorithm {
	switch algo {
	case pdu.HashSHA1:
		return hash.SHA1
	case pdu.HashSHA256:
		return hash.SHA2_256
	case pdu.HashSHA512:
		return hash.SHA2_512
	default:
		return hash.NA
	}
}
