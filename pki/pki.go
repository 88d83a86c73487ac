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

// Package pki implements the crypto abstraction the envelope engine builds on: loading
// certificates and private keys from PEM, RFC 4514 name serialization, RSA/EC public key
// export, PKCS#1 v1.5 sign/verify/key-wrap, AES-128-CBC bulk encryption and X.509
// fingerprinting.
package pki

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/hash"
	"github.com/sipsentry/tlvenvelope/log"
)

// LoadCertAndKeyFromPEM reads a PEM file that may contain a certificate, a private key, or
// both (in either order, any number of interleaving blocks of other types being ignored).
func LoadCertAndKeyFromPEM(data []byte) (cert *x509.Certificate, key crypto.Signer, err error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		switch block.Type {
		case "CERTIFICATE":
			if cert != nil {
				continue
			}
			cert, err = x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, nil, errors.New(errors.InvalidCertificate).SetExtError(err).
					AppendMessage("Failed to parse X.509 certificate from PEM block.")
			}
		case "RSA PRIVATE KEY":
			if key != nil {
				continue
			}
			rsaKey, perr := x509.ParsePKCS1PrivateKey(block.Bytes)
			if perr != nil {
				return nil, nil, errors.New(errors.InvalidCertificate).SetExtError(perr).
					AppendMessage("Failed to parse PKCS#1 RSA private key from PEM block.")
			}
			key = rsaKey
		case "EC PRIVATE KEY", "PRIVATE KEY":
			if key != nil {
				continue
			}
			parsed, perr := x509.ParsePKCS8PrivateKey(block.Bytes)
			if perr != nil {
				return nil, nil, errors.New(errors.InvalidCertificate).SetExtError(perr).
					AppendMessage("Failed to parse private key from PEM block.")
			}
			signer, ok := parsed.(crypto.Signer)
			if !ok {
				return nil, nil, errors.New(errors.UnsupportedKeyType).
					AppendMessage("Parsed private key does not implement crypto.Signer.")
			}
			key = signer
		}
	}

	if cert == nil && key == nil {
		return nil, nil, errors.New(errors.MissingField).
			AppendMessage("PEM data contains neither a certificate nor a private key.")
	}
	return cert, key, nil
}

// SubjectRFC4514 renders the certificate's subject per RFC 4514, comma-separated from most to
// least specific (the convention this engine commits to - see DESIGN.md's Open Question note).
func SubjectRFC4514(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	return cert.Subject.String()
}

// IssuerRFC4514 renders the certificate's issuer per RFC 4514.
func IssuerRFC4514(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	return cert.Issuer.String()
}

// SerialNumber returns the certificate's serial number as a non-negative, big-endian,
// minimum-width byte sequence, matching the wire encoding SERIAL_NUMBER expects.
func SerialNumber(cert *x509.Certificate) []byte {
	if cert == nil || cert.SerialNumber == nil {
		return nil
	}
	return bigIntMinimalBytes(cert.SerialNumber)
}

func bigIntMinimalBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	return n.Bytes()
}

// RSAPublicKeyDER exports pub as a PKCS#1 DER RSAPublicKey.
func RSAPublicKeyDER(pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, errors.New(errors.InvalidArgument)
	}
	return x509.MarshalPKCS1PublicKey(pub), nil
}

// ECUncompressedPoint exports pub as an X9.62 uncompressed point (0x04 || X || Y).
func ECUncompressedPoint(pub *ecdsa.PublicKey) ([]byte, error) {
	if pub == nil || pub.Curve == nil {
		return nil, errors.New(errors.InvalidArgument)
	}
	return elliptic.Marshal(pub.Curve, pub.X, pub.Y), nil
}

// ParseRSAPublicKeyDER parses der as a PKCS#1 RSAPublicKey (SEQUENCE { modulus INTEGER,
// publicExponent INTEGER }), the inverse of RSAPublicKeyDER. Used to recover the public key a
// trust-list record carries in its own PUBLIC_KEY element rather than the certificate it also
// embeds.
func ParseRSAPublicKeyDER(der []byte) (*rsa.PublicKey, error) {
	input := cryptobyte.String(der)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New(errors.InvalidCertificate).
			AppendMessage("Malformed RSAPublicKey: expected a single top-level SEQUENCE.")
	}

	var modulus, exponent big.Int
	if !seq.ReadASN1Integer(&modulus) {
		return nil, errors.New(errors.InvalidCertificate).
			AppendMessage("Malformed RSAPublicKey: could not read modulus INTEGER.")
	}
	if !seq.ReadASN1Integer(&exponent) || !seq.Empty() {
		return nil, errors.New(errors.InvalidCertificate).
			AppendMessage("Malformed RSAPublicKey: could not read publicExponent INTEGER.")
	}
	if modulus.Sign() <= 0 || exponent.Sign() <= 0 || !exponent.IsInt64() {
		return nil, errors.New(errors.InvalidCertificate).
			AppendMessage("Malformed RSAPublicKey: modulus/exponent out of range.")
	}

	return &rsa.PublicKey{N: &modulus, E: int(exponent.Int64())}, nil
}

// ParseECUncompressedPoint parses an X9.62 uncompressed point (0x04 || X || Y) on curve, the
// inverse of ECUncompressedPoint.
func ParseECUncompressedPoint(curve elliptic.Curve, data []byte) (*ecdsa.PublicKey, error) {
	x, y := elliptic.Unmarshal(curve, data)
	if x == nil {
		return nil, errors.New(errors.InvalidCertificate).
			AppendMessage("Malformed EC public key: not a valid uncompressed point on the curve.")
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// ExportPublicKey dispatches on the concrete key type, returning the wire encoding §4.5 requires:
// PKCS#1 DER for RSA, X9.62 uncompressed point for EC. Any other key type fails UnsupportedKeyType.
func ExportPublicKey(pub crypto.PublicKey) ([]byte, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return RSAPublicKeyDER(k)
	case *ecdsa.PublicKey:
		return ECUncompressedPoint(k)
	default:
		return nil, errors.New(errors.UnsupportedKeyType).
			AppendMessage("Only RSA and EC public keys can be exported.")
	}
}

// RSASignPKCS1v15 signs data's digest (computed with algo) using key.
func RSASignPKCS1v15(key *rsa.PrivateKey, data []byte, algo hash.Algorithm) ([]byte, error) {
	cryptoHash, err := algo.CryptoHash()
	if err != nil {
		return nil, err
	}
	digest, err := hash.Sum(algo, data)
	if err != nil {
		return nil, errors.Err(err)
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, cryptoHash, digest)
	if err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err).
			AppendMessage("RSA PKCS#1 v1.5 signing failed.")
	}
	return sig, nil
}

// RSAVerifyPKCS1v15 verifies sig against data's digest (computed with algo) using pub.
func RSAVerifyPKCS1v15(pub *rsa.PublicKey, data, sig []byte, algo hash.Algorithm) error {
	cryptoHash, err := algo.CryptoHash()
	if err != nil {
		return err
	}
	digest, err := hash.Sum(algo, data)
	if err != nil {
		return errors.Err(err)
	}
	if err := rsa.VerifyPKCS1v15(pub, cryptoHash, digest, sig); err != nil {
		return errors.New(errors.InvalidSignature).SetExtError(err)
	}
	return nil
}

// RSAWrapKeyPKCS1v15 encrypts plaintext (an AES key) under pub using PKCS#1 v1.5, per
// EncryptionInfo's KEY element.
func RSAWrapKeyPKCS1v15(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	wrapped, err := rsa.EncryptPKCS1v15(rand.Reader, pub, plaintext)
	if err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err).
			AppendMessage("RSA PKCS#1 v1.5 key wrap failed.")
	}
	return wrapped, nil
}

// RSAUnwrapKeyPKCS1v15 decrypts a wrapped AES key under key.
func RSAUnwrapKeyPKCS1v15(key *rsa.PrivateKey, wrapped []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, key, wrapped)
	if err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err).
			AppendMessage("RSA PKCS#1 v1.5 key unwrap failed.")
	}
	return plaintext, nil
}

// AESCBCEncrypt encrypts data (whose length must already be a multiple of the AES block size)
// under key16/iv16.
func AESCBCEncrypt(key16, iv16, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key16)
	if err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err)
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, errors.New(errors.InvalidArgument).
			AppendMessage("AES-CBC plaintext length must be a multiple of the block size.")
	}
	if len(iv16) != aes.BlockSize {
		return nil, errors.New(errors.InvalidArgument).AppendMessage("AES-CBC IV must be 16 bytes.")
	}

	out := make([]byte, len(data))
	cbc := cipher.NewCBCEncrypter(block, iv16)
	cbc.CryptBlocks(out, data)
	return out, nil
}

// AESCBCDecrypt decrypts ciphertext under key16/iv16.
func AESCBCDecrypt(key16, iv16, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key16)
	if err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err)
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New(errors.InvalidArgument).
			AppendMessage("AES-CBC ciphertext length must be a multiple of the block size.")
	}
	if len(iv16) != aes.BlockSize {
		return nil, errors.New(errors.InvalidArgument).AppendMessage("AES-CBC IV must be 16 bytes.")
	}

	out := make([]byte, len(ciphertext))
	cbc := cipher.NewCBCDecrypter(block, iv16)
	cbc.CryptBlocks(out, ciphertext)
	return out, nil
}

// Hash computes the digest of data with algo.
func Hash(algo hash.Algorithm, data []byte) ([]byte, error) {
	return hash.Sum(algo, data)
}

// Fingerprint returns the digest of the certificate's DER encoding under algo.
func Fingerprint(cert *x509.Certificate, algo hash.Algorithm) ([]byte, error) {
	if cert == nil {
		return nil, errors.New(errors.InvalidArgument)
	}
	log.Debug("pki: computing certificate fingerprint")
	return hash.Sum(algo, cert.Raw)
}

// FingerprintMD5 returns the MD5 digest of the certificate's DER encoding. MD5 sits outside the
// envelope's own HASH_ALGORITHM set (§3) but is what the ENC profile's companion pointer envelope
// uses for its <certHash> element (§4.4.3) - a legacy choice this engine preserves for wire
// compatibility rather than one it would make for anything signature-related.
func FingerprintMD5(cert *x509.Certificate) ([]byte, error) {
	if cert == nil {
		return nil, errors.New(errors.InvalidArgument)
	}
	sum := md5.Sum(cert.Raw)
	return sum[:], nil
}
